package gatewaymock

import (
	"context"
	"errors"

	"empowerment-loans-api/internal/gateway/daraja"
)

var errUnimplemented = errors.New("gatewaymock: method not implemented")

// Gateway is a function-backed stand-in for the Daraja client.
type Gateway struct {
	InitiateSTKPushFn func(ctx context.Context, phone string, amount int64, accountRef, desc string) (*daraja.STKPushResult, error)
}

func (m *Gateway) InitiateSTKPush(ctx context.Context, phone string, amount int64, accountRef, desc string) (*daraja.STKPushResult, error) {
	if m.InitiateSTKPushFn != nil {
		return m.InitiateSTKPushFn(ctx, phone, amount, accountRef, desc)
	}
	return nil, errUnimplemented
}
