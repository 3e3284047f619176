package diag

import (
	"errors"
	"testing"
)

func TestAppendAccumulates(t *testing.T) {
	var err error
	err = Append(err, nil)
	if err != nil {
		t.Fatalf("Append(nil, nil) = %v, want nil", err)
	}
	err = Append(err, errors.New("first"))
	err = Append(err, errors.New("second"))
	if Len(err) != 2 {
		t.Errorf("Len() = %d, want 2", Len(err))
	}
}

func TestLenOfPlainError(t *testing.T) {
	if got := Len(errors.New("single")); got != 1 {
		t.Errorf("Len(plain error) = %d, want 1", got)
	}
}
