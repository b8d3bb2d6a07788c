package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapStorage(t *testing.T) {
	driverErr := errors.New("connection refused")

	tests := []struct {
		name        string
		err         error
		wantNil     bool
		wantStorage bool
		wantIs      error
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "driver error", err: driverErr, wantStorage: true, wantIs: driverErr},
		{name: "empty cart passes through", err: ErrEmptyCart, wantIs: ErrEmptyCart},
		{name: "wrapped product not found passes through", err: fmt.Errorf("insert item: %w", ErrProductNotFound), wantIs: ErrProductNotFound},
		{name: "order not found passes through", err: ErrOrderNotFound, wantIs: ErrOrderNotFound},
		{name: "storage error not double wrapped", err: &StorageError{Op: "inner", Err: driverErr}, wantStorage: true, wantIs: driverErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapStorage("commit order", tt.err)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if IsStorageError(got) != tt.wantStorage {
				t.Fatalf("IsStorageError(%v) = %v, want %v", got, !tt.wantStorage, tt.wantStorage)
			}
			if !errors.Is(got, tt.wantIs) {
				t.Fatalf("expected %v to wrap %v", got, tt.wantIs)
			}
		})
	}
}

func TestStorageErrorMessage(t *testing.T) {
	err := WrapStorage("list orders", errors.New("timeout"))
	if err.Error() != "storage: list orders: timeout" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	var storageErr *StorageError
	if !errors.As(err, &storageErr) || storageErr.Op != "list orders" {
		t.Fatalf("expected StorageError with op, got %#v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(ErrProductNotFound) || !IsNotFound(fmt.Errorf("x: %w", ErrOrderNotFound)) {
		t.Fatal("not found errors must be detected")
	}
	if IsNotFound(ErrEmptyCart) || IsNotFound(nil) {
		t.Fatal("unexpected not found")
	}
}
