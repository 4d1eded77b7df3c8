package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	tenant := uuid.New()

	t.Run("tenant only", func(t *testing.T) {
		scope, err := parseScope(tenant.String(), "")
		require.NoError(t, err)
		assert.Equal(t, tenant, scope.TenantID)
		assert.Equal(t, uuid.Nil, scope.CompanyID)
	})

	t.Run("tenant and company", func(t *testing.T) {
		company := uuid.New()
		scope, err := parseScope(tenant.String(), company.String())
		require.NoError(t, err)
		assert.Equal(t, company, scope.CompanyID)
	})

	t.Run("a tenant is required", func(t *testing.T) {
		_, err := parseScope("", "")
		assert.Error(t, err)
	})
}
