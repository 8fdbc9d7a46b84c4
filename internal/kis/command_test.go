package kis

import "testing"

func TestCommandConstructors(t *testing.T) {
	cases := []struct {
		name   string
		cmd    Command
		path   string
		trID   string
		method Method
	}{
		{"price", NewPriceCommand("005930"),
			"/uapi/domestic-stock/v1/quotations/inquire-price", "FHKST01010100", MethodGET},
		{"daily price", NewDailyPriceCommand("005930", PeriodDay),
			"/uapi/domestic-stock/v1/quotations/inquire-daily-price", "FHKST01010400", MethodGET},
		{"daily chart", NewDailyItemChartCommand("005930", PeriodDay, 20220501, 20230511),
			"/uapi/domestic-stock/v1/quotations/inquire-daily-itemchartprice", "FHKST03010100", MethodGET},
		{"balance", NewBalanceCommand("12345678", "01"),
			"/uapi/domestic-stock/v1/trading/inquire-balance", "TTTC8434R", MethodGET},
		{"order buy", NewOrderBuyCommand("12345678", "01", "005930", 1),
			"/uapi/domestic-stock/v1/trading/order-cash", "TTTC0802U", MethodPOST},
		{"order sell", NewOrderSellCommand("12345678", "01", "005930", 1),
			"/uapi/domestic-stock/v1/trading/order-cash", "TTTC0801U", MethodPOST},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.cmd.Path != c.path {
				t.Errorf("Path = %q, want %q", c.cmd.Path, c.path)
			}
			if c.cmd.TrID != c.trID {
				t.Errorf("TrID = %q, want %q", c.cmd.TrID, c.trID)
			}
			if c.cmd.Method != c.method {
				t.Errorf("Method = %q, want %q", c.cmd.Method, c.method)
			}
			if len(c.cmd.Params) == 0 {
				t.Error("Params is empty")
			}
		})
	}
}

func TestOrderCommandParams(t *testing.T) {
	cmd := NewOrderBuyCommand("12345678", "01", "005930", 3)

	want := map[string]string{
		"CANO":         "12345678",
		"ACNT_PRDT_CD": "01",
		"PDNO":         "005930",
		"ORD_DVSN":     "01",
		"ORD_QTY":      "3",
		"ORD_UNPR":     "0",
	}
	for k, v := range want {
		if cmd.Params[k] != v {
			t.Errorf("Params[%q] = %q, want %q", k, cmd.Params[k], v)
		}
	}

	// Buy and sell differ only by transaction id.
	sell := NewOrderSellCommand("12345678", "01", "005930", 3)
	if sell.Path != cmd.Path {
		t.Errorf("sell Path = %q, want %q", sell.Path, cmd.Path)
	}
	if sell.TrID == cmd.TrID {
		t.Error("buy and sell commands must have distinct transaction ids")
	}
}

func TestDailyItemChartDateParams(t *testing.T) {
	cmd := NewDailyItemChartCommand("000660", PeriodDay, 20220101, 20220131)
	if got := cmd.Params["FID_INPUT_DATE_1"]; got != "20220101" {
		t.Errorf("FID_INPUT_DATE_1 = %q, want %q", got, "20220101")
	}
	if got := cmd.Params["FID_INPUT_DATE_2"]; got != "20220131" {
		t.Errorf("FID_INPUT_DATE_2 = %q, want %q", got, "20220131")
	}
}
