package utils

import (
	"context"

	"repair-system/pkg/contextkeys"
	apperrors "repair-system/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func GetBranchIDFromCtx(ctx context.Context) (uint64, error) {
	branchID, ok := ctx.Value(contextkeys.BranchIDKey).(uint64)
	if !ok || branchID == 0 {
		return 0, apperrors.ErrBadRequest
	}
	return branchID, nil
}

func GetRoleIDsFromCtx(ctx context.Context) ([]uint64, error) {
	roleIDs, ok := ctx.Value(contextkeys.RoleIDsKey).([]uint64)
	if !ok || len(roleIDs) == 0 {
		return nil, apperrors.ErrForbidden
	}
	return roleIDs, nil
}
