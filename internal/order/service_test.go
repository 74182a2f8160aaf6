package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/VelocityMotors/VelocityMotors/internal/catalog"
	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
)

type fakeStore struct {
	mu     sync.Mutex
	orders map[string]*Order
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: map[string]*Order{}}
}

func (f *fakeStore) Create(ctx context.Context, o *Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeStore) Update(ctx context.Context, o *Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[o.ID]; !ok {
		return apperr.ErrNotFound
	}
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) List(ctx context.Context, status Status, offset, limit int) ([]Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Order
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

type fakeCars struct {
	cars map[string]*catalog.Car
}

func (f *fakeCars) GetCar(ctx context.Context, id string) (*catalog.Car, error) {
	c, ok := f.cars[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

func testService() (*Service, *fakeStore) {
	store := newFakeStore()
	cars := &fakeCars{cars: map[string]*catalog.Car{
		"car-1": {ID: "car-1", Name: "Supra", PriceCents: 7500000, Available: true},
	}}
	return NewService(store, cars, nil), store
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "13800000000",
		CarID:         "car-1",
		AmountCents:   7500000,
	}
}

func TestCreateOrder(t *testing.T) {
	svc, _ := testService()

	o, err := svc.CreateOrder(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if o.ID == "" {
		t.Fatal("expected generated order id")
	}
	if o.Status != StatusPending {
		t.Fatalf("new order should be pending, got %s", o.Status)
	}

	got, err := svc.GetOrder(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("GetOrder after create failed: %v", err)
	}
	if got.TotalAmountCents != 7500000 {
		t.Fatalf("amount mismatch: %d", got.TotalAmountCents)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _ := testService()

	cases := []struct {
		name   string
		mutate func(*CreateOrderInput)
	}{
		{"empty name", func(in *CreateOrderInput) { in.CustomerName = "" }},
		{"empty email", func(in *CreateOrderInput) { in.CustomerEmail = "" }},
		{"empty car", func(in *CreateOrderInput) { in.CarID = "" }},
		{"zero amount", func(in *CreateOrderInput) { in.AmountCents = 0 }},
	}
	for _, c := range cases {
		in := validInput()
		c.mutate(&in)
		if _, err := svc.CreateOrder(context.Background(), in); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", c.name, err)
		}
	}
}

func TestCreateOrderPriceMustMatch(t *testing.T) {
	svc, _ := testService()

	in := validInput()
	in.AmountCents = 7499999
	if _, err := svc.CreateOrder(context.Background(), in); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation on price mismatch, got %v", err)
	}
}

func TestCreateOrderUnknownCar(t *testing.T) {
	svc, _ := testService()

	in := validInput()
	in.CarID = "no-such-car"
	if _, err := svc.CreateOrder(context.Background(), in); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelOrder(t *testing.T) {
	svc, _ := testService()

	o, err := svc.CreateOrder(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	cancelled, err := svc.CancelOrder(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if cancelled.Status != StatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("expected cancelled with timestamp, got %s", cancelled.Status)
	}

	// 已终态订单不可再取消
	if _, err := svc.CancelOrder(context.Background(), o.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second cancel, got %v", err)
	}
}

func TestTransitionPersists(t *testing.T) {
	svc, store := testService()

	o, err := svc.CreateOrder(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	unlock := svc.Locks().Lock(o.ID)
	_, err = svc.Transition(context.Background(), o.ID, StatusPaid, o.CreatedAt)
	unlock()
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}

	got, _ := store.GetByID(context.Background(), o.ID)
	if got.Status != StatusPaid {
		t.Fatalf("transition not persisted, got %s", got.Status)
	}
}
