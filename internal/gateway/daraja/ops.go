package daraja

import "context"

// Secondary gateway operations. These are thin pass-throughs: fetch a token,
// post the provider payload, hand back the decoded response. State tracking
// stays with the caller.

type GenericResponse map[string]any

func (c *Client) passthrough(ctx context.Context, path string, payload any) (GenericResponse, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	var out GenericResponse
	if err := c.postJSON(ctx, token, path, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) resultURL(path string) string { return c.cfg.BaseURL + path }

// B2CPayment disburses funds from the business shortcode to a customer phone.
func (c *Client) B2CPayment(ctx context.Context, phone string, amount int64, remarks string) (GenericResponse, error) {
	payload := map[string]any{
		"InitiatorName":      c.cfg.InitiatorName,
		"SecurityCredential": c.cfg.SecurityCredential,
		"CommandID":          "BusinessPayment",
		"Amount":             amount,
		"PartyA":             c.cfg.ShortCode,
		"PartyB":             phone,
		"Remarks":            remarks,
		"QueueTimeOutURL":    c.resultURL("/api/mpesa/b2c/timeout"),
		"ResultURL":          c.resultURL("/api/mpesa/b2c/result"),
		"Occasion":           "Loan Disbursement",
	}
	return c.passthrough(ctx, "/mpesa/b2c/v1/paymentrequest", payload)
}

func (c *Client) TransactionStatus(ctx context.Context, transactionID string) (GenericResponse, error) {
	payload := map[string]any{
		"Initiator":          c.cfg.InitiatorName,
		"SecurityCredential": c.cfg.SecurityCredential,
		"CommandID":          "TransactionStatusQuery",
		"TransactionID":      transactionID,
		"PartyA":             c.cfg.ShortCode,
		"IdentifierType":     "4",
		"ResultURL":          c.resultURL("/api/mpesa/status/result"),
		"QueueTimeOutURL":    c.resultURL("/api/mpesa/status/timeout"),
		"Remarks":            "Transaction status check",
		"Occasion":           "Status Query",
	}
	return c.passthrough(ctx, "/mpesa/transactionstatus/v1/query", payload)
}

func (c *Client) AccountBalance(ctx context.Context) (GenericResponse, error) {
	payload := map[string]any{
		"Initiator":          c.cfg.InitiatorName,
		"SecurityCredential": c.cfg.SecurityCredential,
		"CommandID":          "AccountBalance",
		"PartyA":             c.cfg.ShortCode,
		"IdentifierType":     "4",
		"Remarks":            "Account balance check",
		"QueueTimeOutURL":    c.resultURL("/api/mpesa/balance/timeout"),
		"ResultURL":          c.resultURL("/api/mpesa/balance/result"),
	}
	return c.passthrough(ctx, "/mpesa/accountbalance/v1/query", payload)
}

func (c *Client) ReverseTransaction(ctx context.Context, transactionID string, amount int64, receiverParty string) (GenericResponse, error) {
	payload := map[string]any{
		"Initiator":              c.cfg.InitiatorName,
		"SecurityCredential":     c.cfg.SecurityCredential,
		"CommandID":              "TransactionReversal",
		"TransactionID":          transactionID,
		"Amount":                 amount,
		"ReceiverParty":          receiverParty,
		"RecieverIdentifierType": "4",
		"ResultURL":              c.resultURL("/api/mpesa/reversal/result"),
		"QueueTimeOutURL":        c.resultURL("/api/mpesa/reversal/timeout"),
		"Remarks":                "Transaction reversal",
		"Occasion":               "Reversal",
	}
	return c.passthrough(ctx, "/mpesa/reversal/v1/request", payload)
}

type StandingOrderInput struct {
	PhoneNumber      string
	Amount           int64
	Frequency        string // DAILY, WEEKLY, MONTHLY
	StartDate        string // YYYY-MM-DD
	EndDate          string // YYYY-MM-DD
	AccountReference string
}

// StandingOrder sets up a recurring repayment (Ratiba).
func (c *Client) StandingOrder(ctx context.Context, in StandingOrderInput) (GenericResponse, error) {
	payload := map[string]any{
		"StandingOrderName":           "Loan Repayment - " + in.AccountReference,
		"BusinessShortCode":           c.cfg.ShortCode,
		"TransactionType":             "Standing Order Customer Pay Bill",
		"Amount":                      in.Amount,
		"PartyA":                      in.PhoneNumber,
		"ReceiverPartyIdentifierType": "4",
		"CallBackURL":                 c.resultURL("/api/mpesa/standing-order/callback"),
		"AccountReference":            in.AccountReference,
		"TransactionDesc":             "Recurring loan repayment",
		"Frequency":                   in.Frequency,
		"StartDate":                   in.StartDate,
		"EndDate":                     in.EndDate,
	}
	return c.passthrough(ctx, "/standingorder/v1/createStandingOrderExternal", payload)
}

// C2BSimulate triggers a simulated customer payment (sandbox only).
func (c *Client) C2BSimulate(ctx context.Context, shortCode string, amount int64, msisdn, billRefNumber string) (GenericResponse, error) {
	payload := map[string]any{
		"ShortCode":     shortCode,
		"CommandID":     "CustomerPayBillOnline",
		"Amount":        amount,
		"Msisdn":        msisdn,
		"BillRefNumber": billRefNumber,
	}
	return c.passthrough(ctx, "/mpesa/c2b/v1/simulate", payload)
}

func (c *Client) C2BRegisterURLs(ctx context.Context, shortCode, responseType, confirmationURL, validationURL string) (GenericResponse, error) {
	payload := map[string]any{
		"ShortCode":       shortCode,
		"ResponseType":    responseType,
		"ConfirmationURL": confirmationURL,
		"ValidationURL":   validationURL,
	}
	return c.passthrough(ctx, "/mpesa/c2b/v1/registerurl", payload)
}

func (c *Client) PullRegister(ctx context.Context, shortCode, requestType, nominatedNumber, callbackURL string) (GenericResponse, error) {
	payload := map[string]any{
		"ShortCode":       shortCode,
		"RequestType":     requestType,
		"NominatedNumber": nominatedNumber,
		"CallBackURL":     callbackURL,
	}
	return c.passthrough(ctx, "/pulltransactions/v1/register", payload)
}

func (c *Client) PullQuery(ctx context.Context, shortCode, startDate, endDate, offsetValue string) (GenericResponse, error) {
	if offsetValue == "" {
		offsetValue = "0"
	}
	payload := map[string]any{
		"ShortCode":   shortCode,
		"StartDate":   startDate, // YYYY-MM-DD HH:mm:ss
		"EndDate":     endDate,
		"OffSetValue": offsetValue,
	}
	return c.passthrough(ctx, "/pulltransactions/v1/query", payload)
}

type B2BInput struct {
	Initiator              string `json:"initiator" validate:"required"`
	SecurityCredential     string `json:"securityCredential" validate:"required"`
	CommandID              string `json:"commandID" validate:"required"`
	SenderIdentifierType   string `json:"senderIdentifierType" validate:"required"`
	RecieverIdentifierType string `json:"recieverIdentifierType" validate:"required"`
	Amount                 int64  `json:"amount" validate:"required"`
	PartyA                 string `json:"partyA" validate:"required"`
	PartyB                 string `json:"partyB" validate:"required"`
	AccountReference       string `json:"accountReference" validate:"required"`
	Remarks                string `json:"remarks" validate:"required"`
	QueueTimeOutURL        string `json:"queueTimeOutURL" validate:"required"`
	ResultURL              string `json:"resultURL" validate:"required"`
}

func (c *Client) B2BPayment(ctx context.Context, in B2BInput) (GenericResponse, error) {
	payload := map[string]any{
		"Initiator":              in.Initiator,
		"SecurityCredential":     in.SecurityCredential,
		"CommandID":              in.CommandID,
		"SenderIdentifierType":   in.SenderIdentifierType,
		"RecieverIdentifierType": in.RecieverIdentifierType,
		"Amount":                 in.Amount,
		"PartyA":                 in.PartyA,
		"PartyB":                 in.PartyB,
		"AccountReference":       in.AccountReference,
		"Remarks":                in.Remarks,
		"QueueTimeOutURL":        in.QueueTimeOutURL,
		"ResultURL":              in.ResultURL,
	}
	return c.passthrough(ctx, "/mpesa/b2b/v1/paymentrequest", payload)
}
