package testdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTestDatabaseURL(t *testing.T) {
	t.Setenv("TASKAPP_TEST_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "")
	assert.Empty(t, GetTestDatabaseURL())
	assert.True(t, ShouldSkipDatabaseTest())

	t.Setenv("DATABASE_URL", "postgres://app@localhost/app")
	assert.Equal(t, "postgres://app@localhost/app", GetTestDatabaseURL())
	assert.True(t, IsIntegrationTestEnvironment())

	t.Setenv("TASKAPP_TEST_DATABASE_URL", "postgres://test@localhost/test")
	assert.Equal(t, "postgres://test@localhost/test", GetTestDatabaseURL())
}
