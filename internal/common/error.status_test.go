package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	wrapped := fmt.Errorf("buscar relatório: %w", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrInFlight))
}

func TestConvertTransportError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, ConvertTransportError(nil))
	})

	t.Run("timeout de contexto", func(t *testing.T) {
		err := ConvertTransportError(fmt.Errorf("get: %w", context.DeadlineExceeded))
		assert.ErrorIs(t, err, ErrBackendTimeout)
		assert.Equal(t, StatusGatewayTimeout, StatusOf(err))
	})

	t.Run("falha genérica vira NET_001", func(t *testing.T) {
		err := ConvertTransportError(errors.New("connection refused"))
		var ce *Error
		assert.True(t, errors.As(err, &ce))
		assert.Equal(t, ErrCodeNetwork.Code, ce.Code.Code)
		assert.Equal(t, MsgBadGateway, MessageOf(err))
	})

	t.Run("erro do sistema é preservado", func(t *testing.T) {
		assert.Same(t, ErrInFlight, ConvertTransportError(ErrInFlight))
	})
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusConflict, StatusOf(ErrInFlight))
	assert.Equal(t, StatusInternalServerError, StatusOf(errors.New("x")))
	assert.Equal(t, MsgInternalError, MessageOf(errors.New("x")))
}
