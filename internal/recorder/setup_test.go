package recorder

import (
	"os"
	"testing"

	"github.com/asherp/go-for-launch/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize the global logger before running any tests
	logger.Init()

	os.Exit(m.Run())
}
