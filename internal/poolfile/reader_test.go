package poolfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_Formats(t *testing.T) {
	want := []string{"ACGT", "TTGA"}
	cases := map[string]string{
		"text":       "# pool\nACGT\n\n  TTGA\n",
		"json":       `{"dnaStrands": ["ACGT", "TTGA"]}`,
		"json array": `["ACGT","TTGA"]`,
		"jsonl":      "{\"index\":0,\"strand\":\"ACGT\"}\n{\"index\":1,\"strand\":\"TTGA\"}\n",
		"fasta":      ">strand_1\nAC\nGT\n>strand_2 len=4\nTTGA\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Read(strings.NewReader(in))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRead_Empty(t *testing.T) {
	got, err := Read(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRead_BadJSON(t *testing.T) {
	_, err := Read(strings.NewReader(`{"other": 1}`))
	assert.ErrorIs(t, err, ErrMalformedPool)
	_, err = Read(strings.NewReader(`{"dnaStrands": [`))
	assert.ErrorIs(t, err, ErrMalformedPool)
	_, err = Read(strings.NewReader(`["ACGT", 7]`))
	assert.ErrorIs(t, err, ErrMalformedPool)
}

func TestLoad_GzipAndStdin(t *testing.T) {
	fs := afero.NewMemMapFs()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte("ACGT\nTTGA\n"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, afero.WriteFile(fs, "/pool.txt.gz", buf.Bytes(), 0o644))

	got, err := Load(fs, "/pool.txt.gz", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ACGT", "TTGA"}, got)

	got, err = Load(fs, "-", strings.NewReader(">a\nCCCC\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"CCCC"}, got)

	_, err = Load(fs, "/missing", nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedPool)
}
