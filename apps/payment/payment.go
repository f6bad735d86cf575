// Package payment checks the payment details captured at checkout. Cards are
// charged by the shop's POS afterwards; only the last four digits are kept.
package payment

import (
	"errors"
	"fmt"
	"strings"

	"bulut3d/apps/order/model"
)

var ErrInvalidPayment = errors.New("payment: invalid payment details")

const maxInstallments = 12

// Request is what the checkout form sends.
type Request struct {
	Method       string `json:"method"`
	CardHolder   string `json:"cardHolder"`
	CardNumber   string `json:"cardNumber"`
	Installments int    `json:"installments"`
}

// Receipt is the part of a Request that is stored on the order.
type Receipt struct {
	Method       string
	CardLast4    string
	Installments int
}

var methods = map[string]bool{
	model.PaymentCash:     true,
	model.PaymentTransfer: true,
	model.PaymentCard:     true,
	model.PaymentShopier:  true,
}

// Authorize validates r and reduces it to a Receipt. An empty method means
// card. A card number is optional, but one that is given must be well formed.
func Authorize(r Request) (Receipt, error) {
	method := strings.TrimSpace(r.Method)
	if method == "" {
		method = model.PaymentCard
	}
	if !methods[method] {
		return Receipt{}, fmt.Errorf("%w: unknown method %q", ErrInvalidPayment, r.Method)
	}
	if method != model.PaymentCard {
		return Receipt{Method: method, Installments: 1}, nil
	}

	installments := r.Installments
	if installments < 1 {
		installments = 1
	}
	if installments > maxInstallments {
		return Receipt{}, fmt.Errorf("%w: at most %d installments", ErrInvalidPayment, maxInstallments)
	}

	rec := Receipt{Method: method, Installments: installments}
	digits := onlyDigits(r.CardNumber)
	if digits == "" {
		return rec, nil
	}
	if len(digits) < 13 || len(digits) > 19 || !luhn(digits) {
		return Receipt{}, fmt.Errorf("%w: card number", ErrInvalidPayment)
	}
	rec.CardLast4 = digits[len(digits)-4:]
	return rec, nil
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		if r == ' ' || r == '-' {
			return -1
		}
		// anything else makes the number invalid
		return 'x'
	}, s)
}

func luhn(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
