package verification

import (
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// NewVerifiers lists one verifier per supported protocol
func NewVerifiers(forge *ForgeVerifier, sourcify *SourcifyVerifier) []usecase.ContractVerifier {
	return []usecase.ContractVerifier{forge, sourcify}
}
