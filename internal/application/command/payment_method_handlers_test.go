package command

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"pagos-service/internal/domain/aggregate"
	"pagos-service/internal/domain/event"
	"pagos-service/internal/domain/valueobject"
	"pagos-service/internal/infrastructure/memory"
	"pagos-service/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerU1 = "6f1c2b8e-2f6e-4b7a-9d43-1a2b3c4d5e6f"
	ownerU2 = "16fd2706-8baf-433b-82eb-8c7fada847da"
	absent  = "0f8fad5b-d9cb-469f-a165-70867728950e"
)

func seedMethod(t *testing.T, repo *memory.PaymentMethodRepository, owner string, isDefault bool) *aggregate.PaymentMethod {
	t.Helper()
	m, err := aggregate.NewPaymentMethod(owner, "pm_seed", "cus_seed",
		aggregate.Card{Brand: "mastercard", Last4: "5555", ExpMonth: 1, ExpYear: 2031}, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), m))
	if isDefault {
		require.NoError(t, repo.SetDefault(context.Background(), m.ID(), true))
	}
	return m
}

func defaults(t *testing.T, repo *memory.PaymentMethodRepository, owner string) []string {
	t.Helper()
	owned, err := repo.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	var ids []string
	for _, m := range owned {
		if m.IsDefault() {
			ids = append(ids, m.ID())
		}
	}
	return ids
}

func TestAddPaymentMethod_StoresNonDefaultCard(t *testing.T) {
	repo, audit, gw := memory.NewPaymentMethodRepository(), memory.NewAuditLog(), NewMockGateway()
	h := NewAddPaymentMethodHandler(repo, audit, gw, discardLogger())

	id, err := h.Handle(context.Background(), &AddPaymentMethodCommand{OwnerID: ownerU1, OwnerEmail: "u1@example.com", GatewayToken: "pm_abc"})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsDefault())
	assert.Equal(t, "visa", stored.Brand())
	assert.Equal(t, "4242", stored.Last4())
	assert.Equal(t, 12, stored.ExpiryMonth())
	assert.Equal(t, 2030, stored.ExpiryYear())
	assert.Equal(t, "pm_abc", stored.GatewayMethodID())
	assert.Equal(t, "cus_1", stored.GatewayCustomerID())
	assert.Equal(t, []string{event.TypePaymentMethodRegistered}, audit.Types())
}

func TestAddPaymentMethod_EmptyTokenIsNotWrapped(t *testing.T) {
	repo := memory.NewPaymentMethodRepository()
	h := NewAddPaymentMethodHandler(repo, memory.NewAuditLog(), NewMockGateway(), discardLogger())

	for _, token := range []string{"", "   "} {
		_, err := h.Handle(context.Background(), &AddPaymentMethodCommand{OwnerID: ownerU1, GatewayToken: token})
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeValidation))
		assert.False(t, errors.IsSaga(err, SagaAddPaymentMethod))
	}
	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddPaymentMethod_MalformedInputNeverReachesGateway(t *testing.T) {
	cases := map[string]*AddPaymentMethodCommand{
		"malformed owner":  {OwnerID: "not-a-guid", OwnerEmail: "u1@example.com", GatewayToken: "pm_abc"},
		"non pm token":     {OwnerID: ownerU1, OwnerEmail: "u1@example.com", GatewayToken: "tok_visa"},
		"missing owner id": {OwnerEmail: "u1@example.com", GatewayToken: "pm_abc"},
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			repo, gw := memory.NewPaymentMethodRepository(), NewMockGateway()
			h := NewAddPaymentMethodHandler(repo, memory.NewAuditLog(), gw, discardLogger())

			_, err := h.Handle(context.Background(), cmd)
			require.Error(t, err)
			assert.Equal(t, 400, errors.StatusOf(err))
			assert.False(t, errors.IsSaga(err, SagaAddPaymentMethod))
			assert.Zero(t, gw.EnsureCalls)
			assert.Zero(t, gw.FetchCalls)
		})
	}
}

func TestAddPaymentMethod_GatewayFailureIsWrappedOnce(t *testing.T) {
	gw := NewMockGateway()
	gw.EnsureErr = errors.NewGatewayError("ensure customer", stderrors.New("no such payment method"))
	h := NewAddPaymentMethodHandler(memory.NewPaymentMethodRepository(), memory.NewAuditLog(), gw, discardLogger())

	_, err := h.Handle(context.Background(), &AddPaymentMethodCommand{OwnerID: ownerU1, GatewayToken: "pm_missing"})
	require.Error(t, err)
	assert.True(t, errors.IsSaga(err, SagaAddPaymentMethod))
	assert.True(t, errors.HasCode(err, errors.CodeGateway))
	assert.Equal(t, 500, errors.StatusOf(err))
}

func TestAddPaymentMethod_UnsupportedBrandIsValidation(t *testing.T) {
	gw := NewMockGateway()
	gw.Card = &aggregate.Card{Brand: "maestro", Last4: "4242", ExpMonth: 12, ExpYear: 2030}
	h := NewAddPaymentMethodHandler(memory.NewPaymentMethodRepository(), memory.NewAuditLog(), gw, discardLogger())

	_, err := h.Handle(context.Background(), &AddPaymentMethodCommand{OwnerID: ownerU1, GatewayToken: "pm_abc"})
	require.Error(t, err)
	assert.ErrorIs(t, err, valueobject.ErrUnsupportedBrand)
	assert.Equal(t, 400, errors.StatusOf(err))
}

func TestAddPaymentMethod_StoreAndAuditFailuresAreWrapped(t *testing.T) {
	store := &failingMethods{
		PaymentMethodRepository: memory.NewPaymentMethodRepository(),
		saveErr:                 errors.NewStoreConnectionError("save payment method", stderrors.New("timeout")),
	}
	h := NewAddPaymentMethodHandler(store, memory.NewAuditLog(), NewMockGateway(), discardLogger())
	_, err := h.Handle(context.Background(), &AddPaymentMethodCommand{OwnerID: ownerU1, GatewayToken: "pm_abc"})
	assert.True(t, errors.IsSaga(err, SagaAddPaymentMethod))
	assert.True(t, errors.HasCode(err, errors.CodeStoreConnection))

	repo := memory.NewPaymentMethodRepository()
	audit := failingAudit{err: errors.NewStoreCommandError("write audit record", stderrors.New("boom"))}
	h = NewAddPaymentMethodHandler(repo, audit, NewMockGateway(), discardLogger())
	_, err = h.Handle(context.Background(), &AddPaymentMethodCommand{OwnerID: ownerU1, GatewayToken: "pm_abc"})
	assert.True(t, errors.IsSaga(err, SagaAddPaymentMethod))
	assert.True(t, errors.HasCode(err, errors.CodeStoreCommand))
}

func TestDeletePaymentMethod_AbsentNeverDetaches(t *testing.T) {
	gw := NewMockGateway()
	h := NewDeletePaymentMethodHandler(memory.NewPaymentMethodRepository(), memory.NewAuditLog(), gw, discardLogger())

	removed, err := h.Handle(context.Background(), &DeletePaymentMethodCommand{PaymentMethodID: absent})
	require.Error(t, err)
	assert.False(t, removed)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
	assert.False(t, errors.IsSaga(err, SagaDeletePaymentMethod))
	assert.Empty(t, gw.DetachCalls)
}

func TestDeletePaymentMethod_DetachesThenDeletes(t *testing.T) {
	repo, audit, gw := memory.NewPaymentMethodRepository(), memory.NewAuditLog(), NewMockGateway()
	m := seedMethod(t, repo, ownerU1, false)
	h := NewDeletePaymentMethodHandler(repo, audit, gw, discardLogger())

	removed, err := h.Handle(context.Background(), &DeletePaymentMethodCommand{PaymentMethodID: m.ID()})
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"pm_seed"}, gw.DetachCalls)

	stored, err := repo.GetByID(context.Background(), m.ID())
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Equal(t, []string{event.TypePaymentMethodDeleted}, audit.Types())
}

func TestDeletePaymentMethod_DetachFailureKeepsRecord(t *testing.T) {
	repo, gw := memory.NewPaymentMethodRepository(), NewMockGateway()
	m := seedMethod(t, repo, ownerU1, false)
	gw.DetachErr = errors.NewGatewayError("detach payment method", stderrors.New("gateway down"))
	h := NewDeletePaymentMethodHandler(repo, memory.NewAuditLog(), gw, discardLogger())

	_, err := h.Handle(context.Background(), &DeletePaymentMethodCommand{PaymentMethodID: m.ID()})
	assert.True(t, errors.IsSaga(err, SagaDeletePaymentMethod))

	stored, err := repo.GetByID(context.Background(), m.ID())
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestDeletePaymentMethod_LocalDeleteFailureIsNotCompensated(t *testing.T) {
	inner, audit, gw := memory.NewPaymentMethodRepository(), memory.NewAuditLog(), NewMockGateway()
	m := seedMethod(t, inner, ownerU1, false)
	store := &failingMethods{PaymentMethodRepository: inner, deleteErr: errors.NewStoreCommandError("delete payment method", stderrors.New("boom"))}
	h := NewDeletePaymentMethodHandler(store, audit, gw, discardLogger())

	_, err := h.Handle(context.Background(), &DeletePaymentMethodCommand{PaymentMethodID: m.ID()})
	assert.True(t, errors.IsSaga(err, SagaDeletePaymentMethod))
	assert.Equal(t, []string{"pm_seed"}, gw.DetachCalls)
	assert.Empty(t, audit.Types())
}

func TestDeletePaymentMethod_MalformedIDIsValidation(t *testing.T) {
	h := NewDeletePaymentMethodHandler(memory.NewPaymentMethodRepository(), memory.NewAuditLog(), NewMockGateway(), discardLogger())
	_, err := h.Handle(context.Background(), &DeletePaymentMethodCommand{PaymentMethodID: "nope"})
	assert.ErrorIs(t, err, valueobject.ErrMalformedGUID)
	assert.True(t, errors.HasCode(err, errors.CodeValidation))
}

func TestSetDefault_MovesFlagToTarget(t *testing.T) {
	repo, audit := memory.NewPaymentMethodRepository(), memory.NewAuditLog()
	m1 := seedMethod(t, repo, ownerU1, true)
	m2 := seedMethod(t, repo, ownerU1, false)
	h := NewSetDefaultPaymentMethodHandler(repo, audit, nil, discardLogger())

	require.NoError(t, h.Handle(context.Background(), &SetDefaultPaymentMethodCommand{PaymentMethodID: m2.ID(), OwnerID: ownerU1}))

	got1, _ := repo.GetByID(context.Background(), m1.ID())
	got2, _ := repo.GetByID(context.Background(), m2.ID())
	assert.False(t, got1.IsDefault())
	assert.True(t, got2.IsDefault())
	assert.Equal(t, []string{event.TypePaymentMethodDefaultChange, event.TypePaymentMethodDefaultChange}, audit.Types())
}

func TestSetDefault_IsIdempotentForCurrentDefault(t *testing.T) {
	repo := memory.NewPaymentMethodRepository()
	m1 := seedMethod(t, repo, ownerU1, true)
	seedMethod(t, repo, ownerU1, false)
	h := NewSetDefaultPaymentMethodHandler(repo, memory.NewAuditLog(), nil, discardLogger())

	cmd := &SetDefaultPaymentMethodCommand{PaymentMethodID: m1.ID(), OwnerID: ownerU1}
	require.NoError(t, h.Handle(context.Background(), cmd))
	require.NoError(t, h.Handle(context.Background(), cmd))
	assert.Equal(t, []string{m1.ID()}, defaults(t, repo, ownerU1))
}

func TestSetDefault_NotFoundAndNoMethods(t *testing.T) {
	repo := memory.NewPaymentMethodRepository()
	h := NewSetDefaultPaymentMethodHandler(repo, memory.NewAuditLog(), nil, discardLogger())

	err := h.Handle(context.Background(), &SetDefaultPaymentMethodCommand{PaymentMethodID: absent, OwnerID: ownerU1})
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	m := seedMethod(t, repo, ownerU1, false)
	err = h.Handle(context.Background(), &SetDefaultPaymentMethodCommand{PaymentMethodID: m.ID(), OwnerID: ownerU2})
	assert.True(t, errors.HasCode(err, errors.CodeNoMethodsForOwner))
	assert.False(t, errors.IsSaga(err, SagaSetDefaultPaymentMethod))
	assert.Equal(t, 404, errors.StatusOf(err))
}

func TestSetDefault_RejectsTargetOfAnotherOwner(t *testing.T) {
	repo, audit := memory.NewPaymentMethodRepository(), memory.NewAuditLog()
	m1 := seedMethod(t, repo, ownerU1, true)
	m3 := seedMethod(t, repo, ownerU2, true)
	m4 := seedMethod(t, repo, ownerU2, false)
	h := NewSetDefaultPaymentMethodHandler(repo, audit, nil, discardLogger())

	err := h.Handle(context.Background(), &SetDefaultPaymentMethodCommand{PaymentMethodID: m4.ID(), OwnerID: ownerU1})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
	assert.Equal(t, 404, errors.StatusOf(err))

	assert.Equal(t, []string{m1.ID()}, defaults(t, repo, ownerU1))
	assert.Equal(t, []string{m3.ID()}, defaults(t, repo, ownerU2))
	assert.Empty(t, audit.Types())
}

func TestSetDefault_ClearsOnlyFirstOtherDefault(t *testing.T) {
	repo := memory.NewPaymentMethodRepository()
	seedMethod(t, repo, ownerU1, true)
	m2 := seedMethod(t, repo, ownerU1, true)
	m3 := seedMethod(t, repo, ownerU1, false)
	h := NewSetDefaultPaymentMethodHandler(repo, memory.NewAuditLog(), nil, discardLogger())

	require.NoError(t, h.Handle(context.Background(), &SetDefaultPaymentMethodCommand{PaymentMethodID: m3.ID(), OwnerID: ownerU1}))
	assert.ElementsMatch(t, []string{m2.ID(), m3.ID()}, defaults(t, repo, ownerU1))
}

func TestSetDefault_AtMostOneDefaultAfterSequentialCalls(t *testing.T) {
	repo := memory.NewPaymentMethodRepository()
	var ids []string
	for i := 0; i < 4; i++ {
		ids = append(ids, seedMethod(t, repo, ownerU1, false).ID())
	}
	h := NewSetDefaultPaymentMethodHandler(repo, memory.NewAuditLog(), nil, discardLogger())

	for _, i := range []int{0, 2, 2, 1, 3, 0, 1} {
		require.NoError(t, h.Handle(context.Background(), &SetDefaultPaymentMethodCommand{PaymentMethodID: ids[i], OwnerID: ownerU1}))
		assert.Equal(t, []string{ids[i]}, defaults(t, repo, ownerU1))
	}
}

func TestSetDefault_UsesOwnerLock(t *testing.T) {
	repo := memory.NewPaymentMethodRepository()
	m := seedMethod(t, repo, ownerU1, false)
	locker := &recordingLocker{}
	h := NewSetDefaultPaymentMethodHandler(repo, memory.NewAuditLog(), locker, discardLogger())

	require.NoError(t, h.Handle(context.Background(), &SetDefaultPaymentMethodCommand{PaymentMethodID: m.ID(), OwnerID: ownerU1}))
	assert.Equal(t, []string{ownerU1}, locker.locked)
	assert.Equal(t, 1, locker.released)
}
