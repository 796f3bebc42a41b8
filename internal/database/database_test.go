package database

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open("", log.NewWithOptions(io.Discard, log.Options{}))
	require.Error(t, err)
}
