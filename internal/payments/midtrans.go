package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// Midtrans rejects item names longer than 50 characters.
const maxItemName = 50

type MidtransAdapter struct {
	ServerKey    string
	IsProduction bool
	snap         snap.Client
	core         coreapi.Client
}

func NewMidtransAdapter(serverKey string, isProd bool) *MidtransAdapter {
	env := midtrans.Sandbox
	if isProd {
		env = midtrans.Production
	}
	m := &MidtransAdapter{ServerKey: serverKey, IsProduction: isProd}
	m.snap.New(serverKey, env)
	m.core.New(serverKey, env)
	return m
}

// InitiatePayment opens a Snap transaction for the whole order.
func (m *MidtransAdapter) InitiatePayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error) {
	if err := ctx.Err(); err != nil {
		return PaymentResponse{}, err
	}

	name := req.ItemName
	if len(name) > maxItemName {
		name = name[:maxItemName]
	}

	sreq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.Amount,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    req.OrderID,
			Name:  name,
			Price: req.Amount,
			Qty:   1,
		}},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerFirstName,
			LName: req.CustomerLastName,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
		},
	}
	if req.FinishURL != "" {
		sreq.Callbacks = &snap.Callbacks{Finish: req.FinishURL}
	}

	resp, merr := m.snap.CreateTransaction(sreq)
	if merr != nil {
		return PaymentResponse{}, fmt.Errorf("midtrans snap (status %d): %s", merr.StatusCode, merr.Message)
	}
	if resp == nil {
		return PaymentResponse{}, fmt.Errorf("midtrans snap: empty response")
	}

	raw, _ := json.Marshal(resp)
	return PaymentResponse{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		Raw:         raw,
	}, nil
}

// VerifyPayment asks the Core API for the current transaction status. The
// webhook body is never trusted on its own.
func (m *MidtransAdapter) VerifyPayment(ctx context.Context, req PaymentVerifyRequest) (PaymentVerifyResponse, error) {
	if err := ctx.Err(); err != nil {
		return PaymentVerifyResponse{}, err
	}
	if strings.TrimSpace(req.OrderID) == "" {
		return PaymentVerifyResponse{}, fmt.Errorf("midtrans status: order id is required")
	}

	st, merr := m.core.CheckTransaction(req.OrderID)
	if merr != nil {
		return PaymentVerifyResponse{}, fmt.Errorf("midtrans status (status %d): %s", merr.StatusCode, merr.Message)
	}
	if st == nil {
		return PaymentVerifyResponse{}, fmt.Errorf("midtrans status: empty response")
	}

	success, terminal := ClassifyStatus(st.TransactionStatus, st.FraudStatus)
	raw, _ := json.Marshal(st)
	return PaymentVerifyResponse{
		Success:       success,
		State:         strings.ToLower(st.TransactionStatus),
		Terminal:      terminal,
		TransactionID: st.TransactionID,
		StatusCode:    st.StatusCode,
		GrossAmount:   st.GrossAmount,
		Raw:           raw,
	}, nil
}

// ClassifyStatus maps a Midtrans transaction_status / fraud_status pair.
// settlement and an accepted capture are paid; deny, cancel, expire, failure
// and refunds are final; everything else is still pending.
func ClassifyStatus(status, fraud string) (success, terminal bool) {
	switch strings.ToLower(status) {
	case "settlement":
		return true, true
	case "capture":
		switch strings.ToLower(fraud) {
		case "", "accept":
			return true, true
		case "deny":
			return false, true
		}
		return false, false
	case "deny", "cancel", "expire", "failure", "refund", "partial_refund", "chargeback", "partial_chargeback":
		return false, true
	}
	return false, false
}
