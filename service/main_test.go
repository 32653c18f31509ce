package service

import (
	"os"
	"testing"

	"github.com/Yureien/PinocchioBot/config"
)

func TestMain(m *testing.M) {
	// Set up test config once for all tests
	config.SetTestConfig(config.NewTestConfig())

	code := m.Run()
	os.Exit(code)
}
