package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"neuromorph/domain/core"
)

func TestGetCodeFromDomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{core.NewInvalidGroupCountError(1), CodeValidationError},
		{core.NewInsufficientDataError("WT", 1, 2, "t-test"), CodeValidationError},
		{core.NewColumnNotFoundError("Area"), CodeValidationError},
		{core.NewNotFoundError("assay", "42"), CodeNotFound},
		{core.NewDependencyUnavailableError("x", "y"), CodeDependencyUnavailable},
		{fmt.Errorf("disk on fire"), CodeInternalError},
		{DatabaseError("failed to list assays", fmt.Errorf("locked")), CodeDatabaseError},
		{ImportFailed("1_WT_1L.csv", core.NewColumnNotFoundError("Area")), CodeImportFailed},
		{ExportFailed("out.xlsx", fmt.Errorf("disk full")), CodeExportFailed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, GetCode(tt.err), "%v", tt.err)
	}
}

func TestWrapKeepsChain(t *testing.T) {
	err := Wrap(core.NewInsufficientDataError("WT", 1, 2, "t-test"), "compare Area")
	assert.True(t, stderrors.Is(err, core.ErrInsufficientData))
	assert.Equal(t, CodeValidationError, GetCode(err))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestConstructorsKeepCause(t *testing.T) {
	cause := core.NewColumnNotFoundError("Area")
	err := ImportFailed("1_WT_1L.csv", cause)
	assert.True(t, stderrors.Is(err, core.ErrColumnNotFound))
	assert.Contains(t, err.Error(), "import of 1_WT_1L.csv failed")

	db := DatabaseError("failed to get assay", fmt.Errorf("locked"))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(db))
	assert.Equal(t, "failed to get assay: locked", db.Error())
}

func TestWithCodeOverrides(t *testing.T) {
	err := WithCode(CodeConfigInvalid, fmt.Errorf("alpha out of range"))
	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(core.NewNotFoundError("assay", "7")))
	assert.Nil(t, WithCode(CodeConfigInvalid, nil))
}
