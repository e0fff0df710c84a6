package payments

import "errors"

var (
	ErrMissingReference         = errors.New("no reference provided")
	ErrGatewayUnreachable       = errors.New("payment gateway unreachable")
	ErrMalformedGatewayResponse = errors.New("malformed gateway response")
	ErrVerificationFailed       = errors.New("verification failed")
	ErrInvalidSignature         = errors.New("invalid webhook signature")
	ErrOrderNotPayable          = errors.New("order not payable")
	ErrMissingPayerEmail        = errors.New("no payer email on order")
)
