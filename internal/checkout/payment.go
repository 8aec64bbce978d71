package checkout

import (
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

type Method string

const (
	MethodUPI            Method = "upi"
	MethodCard           Method = "card"
	MethodNetBanking     Method = "netbanking"
	MethodWallet         Method = "wallet"
	MethodCashOnDelivery Method = "cod"
)

// Payment is the mock payment form. Method selects which of the other
// fields are required; the rest are ignored.
type Payment struct {
	Method Method `json:"method"`

	UPIID string `json:"upiId,omitempty"`

	CardNumber     string `json:"cardNumber,omitempty"`
	ExpiryDate     string `json:"expiryDate,omitempty"`
	CVV            string `json:"cvv,omitempty"`
	CardholderName string `json:"cardholderName,omitempty"`

	BankName   string `json:"bankName,omitempty"`
	WalletType string `json:"walletType,omitempty"`
}

func (p Payment) Validate() validation.FieldErrors {
	errs := validation.FieldErrors{}
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }

	switch p.Method {
	case MethodUPI:
		if blank(p.UPIID) {
			errs["upiId"] = "Please enter your UPI ID"
		}
	case MethodCard:
		required := []struct{ field, value, label string }{
			{"cardNumber", p.CardNumber, "card number"},
			{"expiryDate", p.ExpiryDate, "expiry date"},
			{"cvv", p.CVV, "cvv"},
			{"cardholderName", p.CardholderName, "cardholder name"},
		}
		for _, r := range required {
			if blank(r.value) {
				errs[r.field] = "Please fill in " + r.label
			}
		}
	case MethodNetBanking:
		if blank(p.BankName) {
			errs["bankName"] = "Please select your bank"
		}
	case MethodWallet:
		if blank(p.WalletType) {
			errs["walletType"] = "Please select your wallet"
		}
	case MethodCashOnDelivery:
	default:
		errs["method"] = "Please choose a payment method"
	}
	return errs
}
