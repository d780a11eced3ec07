package biz

import (
	"github.com/lmorchard/fediring-manager/internal/biz/usecase"
)

// Usecases contains all usecases.
type Usecases struct {
	Gate     *usecase.PermissionGate
	Ledger   *usecase.LedgerUsecase
	Selector *usecase.SelectorUsecase
	Members  *usecase.MembersUsecase
}
