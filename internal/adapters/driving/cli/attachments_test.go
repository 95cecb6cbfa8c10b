package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttachmentsCmd_Use(t *testing.T) {
	assert.Equal(t, "attachments", attachmentsCmd.Use)
}

func TestAttachmentsCmd_HasSubcommands(t *testing.T) {
	commands := attachmentsCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "prune")
}

// resetPruneFlags clears flag values and the sticky Changed marker so the
// required-flag check behaves the same on every Execute.
func resetPruneFlags() {
	pruneBefore = ""
	pruneCollection = ""
	pruneContentType = ""
	pruneDryRun = false
	attachmentsPruneCmd.Flags().Lookup("before").Changed = false
}

func TestAttachmentsPruneCmd_RequiresBefore(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"attachments", "prune"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "before" not set`)
}

func TestAttachmentsPruneCmd_PrintsReport(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"attachments", "prune", "--before", "2023-01-01"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetPruneFlags()
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "4 items scanned: 2 matched, 2 deleted, 0 failed.\n", buf.String())
}

func TestAttachmentsPruneCmd_DryRun(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"attachments", "prune", "--before", "2023-01-01", "--dry-run"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetPruneFlags()
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "4 items scanned: 2 attachments would be deleted (dry run).\n", buf.String())
}

func TestAttachmentsPruneCmd_PassesOptions(t *testing.T) {
	mock := &mockCurator{}
	oldService := curatorService
	curatorService = mock
	defer func() {
		curatorService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{
		"attachments", "prune",
		"--before", "2023-01-01",
		"--collection", "COLL1",
		"--content-type", "text/html",
	})
	defer func() {
		rootCmd.SetArgs(nil)
		resetPruneFlags()
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	if assert.Len(t, mock.pruneOpts, 1) {
		assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), mock.pruneOpts[0].Before)
		assert.Equal(t, "COLL1", mock.pruneOpts[0].CollectionKey)
		assert.Equal(t, "text/html", mock.pruneOpts[0].ContentType)
		assert.False(t, mock.pruneOpts[0].DryRun)
	}
}

func TestAttachmentsPruneCmd_RFC3339Cutoff(t *testing.T) {
	mock := &mockCurator{}
	oldService := curatorService
	curatorService = mock
	defer func() {
		curatorService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"attachments", "prune", "--before", "2023-06-15T12:30:00Z"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetPruneFlags()
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	if assert.Len(t, mock.pruneOpts, 1) {
		assert.Equal(t, time.Date(2023, 6, 15, 12, 30, 0, 0, time.UTC), mock.pruneOpts[0].Before)
	}
}

func TestAttachmentsPruneCmd_InvalidCutoff(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"attachments", "prune", "--before", "junk"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetPruneFlags()
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `invalid --before "junk"`)
}

func TestAttachmentsPruneCmd_ServiceError(t *testing.T) {
	oldService := curatorService
	curatorService = &mockCurator{err: errors.New("api unreachable")}
	defer func() {
		curatorService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"attachments", "prune", "--before", "2023-01-01"})
	defer func() {
		rootCmd.SetArgs(nil)
		resetPruneFlags()
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "prune failed")
}
