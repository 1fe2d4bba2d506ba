package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	allActions := []Action{
		ActionCreate, ActionRead, ActionUpdate, ActionDelete,
		ActionBrowseProduct, ActionBuyProduct,
		ActionViewCSV, ActionViewCharts, ActionApplyAI,
	}

	t.Run("admin holds every action", func(t *testing.T) {
		for _, action := range allActions {
			assert.True(t, Allowed(RoleAdmin, action), "admin should be allowed %s", action)
		}
	})

	t.Run("customer holds storefront actions only", func(t *testing.T) {
		allowed := map[Action]bool{
			ActionBrowseProduct: true,
			ActionBuyProduct:    true,
		}
		for _, action := range allActions {
			assert.Equal(t, allowed[action], Allowed(RoleCustomer, action), "customer / %s", action)
		}
	})

	t.Run("deny by default", func(t *testing.T) {
		assert.False(t, Allowed("manager", ActionRead))
		assert.False(t, Allowed("", ActionRead))
		assert.False(t, Allowed(RoleAdmin, "fly"))
		assert.False(t, Allowed(RoleCustomer, ""))
	})
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleCustomer))
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}
