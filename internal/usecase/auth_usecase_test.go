package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"census-gateway/internal/domain/entity"
	"census-gateway/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*miniredis.Miniredis, *redis.Client, *fakeKV, *fakeAuditService, usecase.AuthUsecase) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	kv := newFakeKV()
	audit := &fakeAuditService{}
	facility := usecase.NewFacilityUsecase(testLogger(), &fakeCensusService{}, kv, audit, time.Second)
	auth := usecase.NewAuthUsecase(nil, testLogger(), nil, nil, client, facility, audit)

	return mr, client, kv, audit, auth
}

func TestLogout_RevokesSessionAndClearsFacilitySelection(t *testing.T) {
	mr, client, kv, audit, auth := newAuthFixture(t)

	ctx := context.Background()
	userID := uuid.New()
	accessKey := fmt.Sprintf("access_token:%s:tok-access", userID)
	refreshKey := fmt.Sprintf("refresh_token:%s:tok-refresh", userID)
	require.NoError(t, client.Set(ctx, accessKey, "valid", 0).Err())
	require.NoError(t, client.Set(ctx, refreshKey, "valid", 0).Err())

	selectionKey := "census:selected_facility:" + userID.String()
	require.NoError(t, kv.Set(ctx, selectionKey, "5", 0))

	require.NoError(t, auth.Logout(ctx, userID, "tok-access", "tok-refresh"))

	require.False(t, mr.Exists(accessKey))
	require.False(t, mr.Exists(refreshKey))
	require.False(t, kv.has(selectionKey))
	require.Equal(t, []string{entity.AuditActionUserLogout}, audit.actions())
}

func TestLogout_LeavesOtherSessionsAlone(t *testing.T) {
	mr, client, _, _, auth := newAuthFixture(t)

	ctx := context.Background()
	userID := uuid.New()
	otherID := uuid.New()
	mine := fmt.Sprintf("access_token:%s:tok-a", userID)
	theirs := fmt.Sprintf("access_token:%s:tok-b", otherID)
	require.NoError(t, client.Set(ctx, mine, "valid", 0).Err())
	require.NoError(t, client.Set(ctx, theirs, "valid", 0).Err())

	require.NoError(t, auth.Logout(ctx, userID, "tok-a", "tok-r"))

	require.False(t, mr.Exists(mine))
	require.True(t, mr.Exists(theirs))
}
