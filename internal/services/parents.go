package services

import (
	apperrors "tally/internal/errors"
	"tally/internal/models"
)

// parentTarget describes the storage layout behind one parent kind: the
// counter-carrying model, its table, the foreign key column on transactions,
// and the aggregate snapshot table derived for it.
type parentTarget struct {
	model         interface{}
	table         string
	column        string
	snapshotTable string
	notFound      *apperrors.AppError
}

func targetFor(kind models.ParentKind) (parentTarget, error) {
	switch kind {
	case models.ParentKindAccount:
		return parentTarget{
			model:         &models.Account{},
			table:         "accounts",
			column:        "account_id",
			snapshotTable: "account_balances",
			notFound:      apperrors.ErrAccountNotFound,
		}, nil
	case models.ParentKindCategory:
		return parentTarget{
			model:         &models.Category{},
			table:         "categories",
			column:        "category_id",
			snapshotTable: "category_balances",
			notFound:      apperrors.ErrCategoryNotFound,
		}, nil
	case models.ParentKindMerchant:
		return parentTarget{
			model:         &models.Merchant{},
			table:         "merchants",
			column:        "merchant_id",
			snapshotTable: "merchant_balances",
			notFound:      apperrors.ErrMerchantNotFound,
		}, nil
	default:
		return parentTarget{}, apperrors.WithMessage(apperrors.ErrUnknownParentKind, "unknown parent kind: "+string(kind))
	}
}
