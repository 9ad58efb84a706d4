package writers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dnastore/pkg/api"
)

var pool = []string{"ACGTAC", "TTGACA"}

func TestFormatsRegistered(t *testing.T) {
	assert.Equal(t, []string{"fasta", "json", "jsonl", "text"}, Formats())
}

func TestUnknownFormatError(t *testing.T) {
	err := WriteStrands("nope", io.Discard, pool)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strand format")
}

func TestWriteJSON_OriginalShape(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteStrands("json", &b, pool))
	var got map[string][]string
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	assert.Equal(t, pool, got["dnaStrands"])

	b.Reset()
	require.NoError(t, WriteStrands("json", &b, nil))
	assert.Contains(t, b.String(), `"dnaStrands": []`)
}

func TestWriteJSONL(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteStrands("jsonl", &b, pool))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 2)
	var s api.StrandV1
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &s))
	assert.Equal(t, api.StrandV1{Index: 1, Strand: "TTGACA"}, s)
}

func TestWriteTextAndFASTA(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteStrands("text", &b, pool))
	assert.Equal(t, "ACGTAC\nTTGACA\n", b.String())

	b.Reset()
	require.NoError(t, WriteStrands("fasta", &b, pool))
	assert.Equal(t, ">strand_1 len=6\nACGTAC\n>strand_2 len=6\nTTGACA\n", b.String())
}

func TestIsBrokenPipe(t *testing.T) {
	assert.True(t, IsBrokenPipe(syscall.EPIPE))
	assert.True(t, IsBrokenPipe(io.ErrClosedPipe))
	assert.False(t, IsBrokenPipe(errors.New("other")))
	assert.False(t, IsBrokenPipe(nil))
}
