// Package kis implements the Korea Investment Securities open-API
// collaborator: per-endpoint command descriptors and the authenticated HTTP
// session that dispatches them.
package kis

import "strconv"

// Method selects the HTTP transport for a command.
type Method string

const (
	MethodGET  Method = "GET"
	MethodPOST Method = "POST"
)

// Period selects the sampling interval for chart endpoints.
type Period string

const (
	PeriodDay   Period = "D"
	PeriodWeek  Period = "W"
	PeriodMonth Period = "M"
	PeriodYear  Period = "Y"
)

// Command is a write-once descriptor of one KIS API call: resource path,
// transaction id, HTTP method, and the parameter payload. The backtest core
// only constructs commands and hands them off; the session pattern-matches
// on Method to choose GET or POST transport.
type Command struct {
	Path   string
	TrID   string
	Method Method
	Params map[string]string
}

// NewPriceCommand builds the current-price inquiry for a stock.
func NewPriceCommand(stockNo string) Command {
	return Command{
		Path:   "/uapi/domestic-stock/v1/quotations/inquire-price",
		TrID:   "FHKST01010100",
		Method: MethodGET,
		Params: map[string]string{
			"fid_cond_mrkt_div_code": "J",
			"fid_input_iscd":         stockNo,
		},
	}
}

// NewDailyPriceCommand builds the recent daily-price inquiry for a stock.
func NewDailyPriceCommand(stockNo string, period Period) Command {
	return Command{
		Path:   "/uapi/domestic-stock/v1/quotations/inquire-daily-price",
		TrID:   "FHKST01010400",
		Method: MethodGET,
		Params: map[string]string{
			"fid_cond_mrkt_div_code": "J",
			"fid_input_iscd":         stockNo,
			"fid_period_div_code":    string(period),
			"fid_org_adj_prc":        "0",
		},
	}
}

// NewDailyItemChartCommand builds the date-ranged daily chart inquiry for a
// stock. Start and end are inclusive YYYYMMDD dates.
func NewDailyItemChartCommand(stockNo string, period Period, start, end int) Command {
	return Command{
		Path:   "/uapi/domestic-stock/v1/quotations/inquire-daily-itemchartprice",
		TrID:   "FHKST03010100",
		Method: MethodGET,
		Params: map[string]string{
			"fid_cond_mrkt_div_code": "J",
			"fid_input_iscd":         stockNo,
			"FID_INPUT_DATE_1":       strconv.Itoa(start),
			"FID_INPUT_DATE_2":       strconv.Itoa(end),
			"fid_period_div_code":    string(period),
			"fid_org_adj_prc":        "0",
		},
	}
}

// NewBalanceCommand builds the account balance inquiry.
func NewBalanceCommand(accountNo, accountCd string) Command {
	return Command{
		Path:   "/uapi/domestic-stock/v1/trading/inquire-balance",
		TrID:   "TTTC8434R",
		Method: MethodGET,
		Params: map[string]string{
			"CANO":                  accountNo,
			"ACNT_PRDT_CD":          accountCd,
			"AFHR_FLPR_YN":          "N",
			"OFL_YN":                "",
			"INQR_DVSN":             "01",
			"UNPR_DVSN":             "01",
			"FUND_STTL_ICLD_YN":     "N",
			"FNCG_AMT_AUTO_RDPT_YN": "N",
			"PRCS_DVSN":             "00",
			"CTX_AREA_FK100":        "",
			"CTX_AREA_NK100":        "",
		},
	}
}

// NewOrderBuyCommand builds a market buy order for qty shares.
func NewOrderBuyCommand(accountNo, accountCd, stockNo string, qty int) Command {
	return Command{
		Path:   "/uapi/domestic-stock/v1/trading/order-cash",
		TrID:   "TTTC0802U",
		Method: MethodPOST,
		Params: orderParams(accountNo, accountCd, stockNo, qty),
	}
}

// NewOrderSellCommand builds a market sell order for qty shares.
func NewOrderSellCommand(accountNo, accountCd, stockNo string, qty int) Command {
	return Command{
		Path:   "/uapi/domestic-stock/v1/trading/order-cash",
		TrID:   "TTTC0801U",
		Method: MethodPOST,
		Params: orderParams(accountNo, accountCd, stockNo, qty),
	}
}

func orderParams(accountNo, accountCd, stockNo string, qty int) map[string]string {
	return map[string]string{
		"CANO":         accountNo,
		"ACNT_PRDT_CD": accountCd,
		"PDNO":         stockNo,
		"ORD_DVSN":     "01",
		"ORD_QTY":      strconv.Itoa(qty),
		"ORD_UNPR":     "0",
	}
}
