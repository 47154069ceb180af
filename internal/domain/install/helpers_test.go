package install

import (
	"testing"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/adapters/filesystem"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/execution"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/testutil/mocks"
)

type testRuntime struct {
	Runtime
	runner *mocks.CommandRunner
	logger *mocks.Logger
}

func newTestRuntime(t *testing.T) *testRuntime {
	t.Helper()

	runner := mocks.NewCommandRunner()
	logger := mocks.NewLogger()
	return &testRuntime{
		Runtime: NewRuntime(NewOutput(logger), filesystem.NewRealFileSystem(), execution.NewExecutor(runner)),
		runner: runner,
		logger: logger,
	}
}
