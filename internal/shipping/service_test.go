package shipping

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]*Wilaya, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Wilaya), args.Error(1)
}

func (m *MockRepository) GetByNumero(ctx context.Context, numero int) (*Wilaya, error) {
	args := m.Called(ctx, numero)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Wilaya), args.Error(1)
}

func (m *MockRepository) GetByName(ctx context.Context, name string) (*Wilaya, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Wilaya), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, w *Wilaya) (*Wilaya, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Wilaya), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, numero int, ch Changes) (*Wilaya, error) {
	args := m.Called(ctx, numero, ch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Wilaya), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, numero int) error {
	return m.Called(ctx, numero).Error(0)
}

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo Repository) *service {
	return &service{repo: repo, now: func() time.Time { return fixedNow }}
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestWilaya_Fee(t *testing.T) {
	w := &Wilaya{PrixDomicile: 600, PrixAgence: 400}
	assert.Equal(t, int64(600), w.Fee(DeliveryDomicile))
	assert.Equal(t, int64(400), w.Fee(DeliveryAgence))
	assert.True(t, DeliveryAgence.Valid())
	assert.False(t, DeliveryType("relais").Valid())
}

func TestService_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("ByNumero", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByNumero", ctx, 16).Return(&Wilaya{Numero: 16, Nom: "Alger"}, nil)

		w, err := newTestService(repo).Lookup(ctx, "16")
		require.NoError(t, err)
		assert.Equal(t, "Alger", w.Nom)
		repo.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
	})

	t.Run("ByName", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByName", ctx, "Tizi Ouzou").Return(&Wilaya{Numero: 15, Nom: "Tizi Ouzou"}, nil)

		w, err := newTestService(repo).Lookup(ctx, "Tizi Ouzou")
		require.NoError(t, err)
		assert.Equal(t, 15, w.Numero)
	})

	t.Run("NameMatchIsExact", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByName", ctx, "tizi ouzou").Return(&Wilaya{Numero: 15, Nom: "Tizi Ouzou"}, nil)

		w, err := newTestService(repo).Lookup(ctx, "tizi ouzou")
		assert.Nil(t, w)
		assert.ErrorIs(t, err, ErrWilayaNotFound)
	})

	t.Run("NameMissing", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByName", ctx, "Atlantis").Return(nil, ErrWilayaNotFound)

		_, err := newTestService(repo).Lookup(ctx, "Atlantis")
		assert.ErrorIs(t, err, ErrWilayaNotFound)
	})

	t.Run("Blank", func(t *testing.T) {
		_, err := newTestService(new(MockRepository)).Lookup(ctx, " ")
		assert.ErrorIs(t, err, ErrWilayaNotFound)
	})
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		expected := &Wilaya{Numero: 31, Nom: "Oran", PrixDomicile: 700, PrixAgence: 450, CreatedAt: fixedNow, UpdatedAt: fixedNow}
		repo.On("Create", ctx, expected).Return(&Wilaya{ID: "w1", Numero: 31, Nom: "Oran"}, nil)

		w, err := newTestService(repo).Create(ctx, CreateInput{
			Numero: intPtr(31), Nom: " Oran ", PrixDomicile: int64Ptr(700), PrixAgence: int64Ptr(450),
		})
		require.NoError(t, err)
		assert.Equal(t, "w1", w.ID)
	})

	t.Run("ZeroPricesAllowed", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", ctx, mock.Anything).Return(&Wilaya{ID: "w2"}, nil)

		_, err := newTestService(repo).Create(ctx, CreateInput{
			Numero: intPtr(1), Nom: "Adrar", PrixDomicile: int64Ptr(0), PrixAgence: int64Ptr(0),
		})
		assert.NoError(t, err)
	})

	cases := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"missing numero", CreateInput{Nom: "Oran", PrixDomicile: int64Ptr(1), PrixAgence: int64Ptr(1)}, ErrMissingFields},
		{"missing nom", CreateInput{Numero: intPtr(31), PrixDomicile: int64Ptr(1), PrixAgence: int64Ptr(1)}, ErrMissingFields},
		{"missing price", CreateInput{Numero: intPtr(31), Nom: "Oran", PrixDomicile: int64Ptr(1)}, ErrMissingFields},
		{"numero zero", CreateInput{Numero: intPtr(0), Nom: "X", PrixDomicile: int64Ptr(1), PrixAgence: int64Ptr(1)}, ErrNumeroRange},
		{"numero seventy", CreateInput{Numero: intPtr(70), Nom: "X", PrixDomicile: int64Ptr(1), PrixAgence: int64Ptr(1)}, ErrNumeroRange},
		{"negative price", CreateInput{Numero: intPtr(5), Nom: "X", PrixDomicile: int64Ptr(-1), PrixAgence: int64Ptr(1)}, ErrNegativePrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockRepository)
			_, err := newTestService(repo).Create(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("PartialKeepsOtherFields", func(t *testing.T) {
		repo := new(MockRepository)
		price := int64(800)
		repo.On("Update", ctx, 16, Changes{UpdateInput: UpdateInput{PrixDomicile: &price}, UpdatedAt: fixedNow}).
			Return(&Wilaya{Numero: 16, Nom: "Alger", PrixDomicile: 800, PrixAgence: 400}, nil)

		w, err := newTestService(repo).Update(ctx, 16, UpdateInput{PrixDomicile: &price})
		require.NoError(t, err)
		assert.Equal(t, int64(400), w.PrixAgence)
	})

	t.Run("BlankNom", func(t *testing.T) {
		blank := "  "
		_, err := newTestService(new(MockRepository)).Update(ctx, 16, UpdateInput{Nom: &blank})
		assert.ErrorIs(t, err, ErrNomRequired)
	})

	t.Run("NegativePrice", func(t *testing.T) {
		neg := int64(-10)
		_, err := newTestService(new(MockRepository)).Update(ctx, 16, UpdateInput{PrixAgence: &neg})
		assert.ErrorIs(t, err, ErrNegativePrice)
	})

	t.Run("Missing", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Update", ctx, 42, mock.Anything).Return(nil, ErrWilayaNotFound)
		_, err := newTestService(repo).Update(ctx, 42, UpdateInput{})
		assert.ErrorIs(t, err, ErrWilayaNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("Delete", ctx, 16).Return(nil)
	repo.On("Delete", ctx, 68).Return(ErrWilayaNotFound)

	svc := newTestService(repo)
	assert.NoError(t, svc.Delete(ctx, 16))
	assert.ErrorIs(t, svc.Delete(ctx, 68), ErrWilayaNotFound)
}
