package payment

import (
	"testing"

	"bulut3d/apps/order/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeCard(t *testing.T) {
	rec, err := Authorize(Request{CardNumber: "4111 1111 1111 1111", Installments: 3})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCard, rec.Method)
	assert.Equal(t, "1111", rec.CardLast4)
	assert.Equal(t, 3, rec.Installments)
}

func TestAuthorizeCardWithoutNumber(t *testing.T) {
	rec, err := Authorize(Request{Method: model.PaymentCard})
	require.NoError(t, err)
	assert.Empty(t, rec.CardLast4)
	assert.Equal(t, 1, rec.Installments)
}

func TestAuthorizeRejects(t *testing.T) {
	cases := map[string]Request{
		"bad checksum":   {CardNumber: "4111 1111 1111 1234"},
		"too short":      {CardNumber: "4111"},
		"letters":        {CardNumber: "4111 1111 1111 111a"},
		"installments":   {CardNumber: "4111111111111111", Installments: 24},
		"unknown method": {Method: "Bitcoin"},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Authorize(r)
			assert.ErrorIs(t, err, ErrInvalidPayment)
		})
	}
}

func TestAuthorizeNonCardIgnoresCardFields(t *testing.T) {
	rec, err := Authorize(Request{Method: model.PaymentTransfer, CardNumber: "junk", Installments: 6})
	require.NoError(t, err)
	assert.Equal(t, Receipt{Method: model.PaymentTransfer, Installments: 1}, rec)
}
