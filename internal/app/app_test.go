package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dnastore-core/codec"
	"dnastore-core/constraint"
	"dnastore/internal/cli"
	"dnastore/pkg/api"
)

func runApp(t *testing.T, fs afero.Fs, argv ...string) (int, string, string) {
	t.Helper()
	var out, errBuf bytes.Buffer
	code := RunEnv(context.Background(), Env{FS: fs, Stdin: strings.NewReader("")}, argv, &out, &errBuf)
	return code, out.String(), errBuf.String()
}

func encodedPool(t *testing.T, fs afero.Fs, path string, payload []byte, extra ...string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, "/payload", payload, 0o644))
	argv := append([]string{"encode", "/payload", "-o", path, "-f", "text", "-q"}, extra...)
	code, _, stderr := runApp(t, fs, argv...)
	require.Equal(t, 0, code, stderr)
}

func TestCheckStrand(t *testing.T) {
	rules := constraint.Rules{MaxHomopolymer: 3, MinGC: 0.25, MaxGC: 0.75}
	cases := []struct {
		name   string
		strand string
		length int
		rule   string
	}{
		{"ok", "ACGTACGTAC", 10, ""},
		{"alphabet", "ACGTNCGTAC", 10, "alphabet"},
		{"length", "ACGTACGT", 10, "length"},
		{"homopolymer", "ACGTTTTACG", 10, "homopolymer"},
		{"gc", "ATATATATAT", 10, "gc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, bad := checkStrand(tc.strand, tc.length, 0, rules)
			if tc.rule == "" {
				assert.False(t, bad)
				return
			}
			require.True(t, bad)
			assert.Equal(t, tc.rule, v.Rule)
		})
	}
}

func TestCheckStrand_PrimerRegionsIgnored(t *testing.T) {
	rules := constraint.Rules{MaxHomopolymer: 3, MinGC: 0.25, MaxGC: 0.75}
	v, bad := checkStrand("AAAAA"+"ACGTACGT"+"TTTTT", 18, 5, rules)
	assert.False(t, bad, v.Detail)

	v, bad = checkStrand("ACGTA"+"ACGGGGGT"+"ACGTA", 18, 5, rules)
	require.True(t, bad)
	assert.Equal(t, "homopolymer", v.Rule)
	assert.Contains(t, v.Detail, "strand position 8")
}

func TestCheck_EncodedPoolIsClean(t *testing.T) {
	fs := afero.NewMemMapFs()
	encodedPool(t, fs, "/pool.txt", []byte(strings.Repeat("check me ", 200)), "--add-primer")

	code, out, stderr := runApp(t, fs, "check", "/pool.txt", "--add-primer", "-f", "json", "-q")
	require.Equal(t, 0, code, stderr)
	var vs []api.ViolationV1
	require.NoError(t, json.Unmarshal([]byte(out), &vs))
	assert.Empty(t, vs)
}

func TestCheck_ReportsViolations(t *testing.T) {
	fs := afero.NewMemMapFs()
	encodedPool(t, fs, "/pool.txt", []byte("violations"))
	raw, err := afero.ReadFile(fs, "/pool.txt")
	require.NoError(t, err)
	pool := strings.TrimSpace(string(raw)) + "\n" + strings.Repeat("A", 200) + "\nACGT\n"
	require.NoError(t, afero.WriteFile(fs, "/bad.txt", []byte(pool), 0o644))

	code, out, _ := runApp(t, fs, "check", "/bad.txt", "-f", "json", "-q")
	assert.Equal(t, 1, code)
	var vs []api.ViolationV1
	require.NoError(t, json.Unmarshal([]byte(out), &vs))
	require.Len(t, vs, 2)
	assert.Equal(t, "homopolymer", vs[0].Rule)
	assert.Equal(t, "length", vs[1].Rule)
}

func TestPoolStats(t *testing.T) {
	st, gcs := poolStats([]string{"GGCC", "AATT", "acgt", "ACNT"}, 0)
	assert.Equal(t, 3, st.Strands)
	assert.Equal(t, 1, st.InvalidBases)
	assert.Equal(t, 4, st.MinLength)
	assert.InDelta(t, 0.5, st.MeanGC, 1e-9)
	assert.InDelta(t, 0.0, st.MinGC, 1e-9)
	assert.InDelta(t, 1.0, st.MaxGC, 1e-9)
	assert.Equal(t, 2, st.MaxRun)
	assert.Len(t, gcs, 3)

	st, _ = poolStats(nil, 0)
	assert.Zero(t, st.Strands)
	assert.Zero(t, st.MinGC)
}

func TestGCHistogram(t *testing.T) {
	bins := gcHistogram([]float64{0, 0.05, 0.45, 0.5, 1})
	assert.Equal(t, []int{2, 0, 0, 0, 1, 1, 0, 0, 0, 1}, bins)
}

func TestStats_WithChart(t *testing.T) {
	fs := afero.NewMemMapFs()
	encodedPool(t, fs, "/pool.txt", []byte(strings.Repeat("stats ", 300)))

	code, out, stderr := runApp(t, fs, "stats", "/pool.txt", "-f", "json", "--chart", "/gc.png", "-q")
	require.Equal(t, 0, code, stderr)
	var st api.StatsV1
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Positive(t, st.Strands)
	assert.Equal(t, 200, st.MinLength)
	assert.GreaterOrEqual(t, st.MinGC, 0.4)
	assert.LessOrEqual(t, st.MaxGC, 0.6)
	assert.LessOrEqual(t, st.MaxRun, 6)

	png, err := afero.ReadFile(fs, "/gc.png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestPrimers_RoundTripThroughTSV(t *testing.T) {
	fs := afero.NewMemMapFs()
	code, out, stderr := runApp(t, fs, "primers", "--primer-length", "18", "-q")
	require.Equal(t, 0, code, stderr)
	fields := strings.Split(strings.TrimSpace(out), "\t")
	require.Len(t, fields, 3)
	assert.Equal(t, "generated", fields[0])
	assert.Len(t, fields[1], 18)

	require.NoError(t, afero.WriteFile(fs, "/primers.tsv", []byte(out), 0o644))
	code, again, stderr := runApp(t, fs, "primers", "--primers", "/primers.tsv", "-q")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, fields[1:], strings.Split(strings.TrimSpace(again), "\t")[1:])

	payload := []byte("primed payload")
	encodedPool(t, fs, "/pool.txt", payload, "--primers", "/primers.tsv")
	code, decoded, stderr := runApp(t, fs, "decode", "/pool.txt", "--primers", "/primers.tsv", "-q")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, string(payload), decoded)
}

func TestPrimers_UnknownID(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p.tsv",
		[]byte("p1\tACGTACGTACGTACGTACGT\tTGCATGCATGCATGCATGCA\n"), 0o644))
	code, _, stderr := runApp(t, fs, "primers", "--primers", "/p.tsv", "--primer-id", "p9")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "p9")
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte("sequence_length: 160\nrs_num: 3\n"), 0o644))

	g := cli.Globals{ConfigFile: "/c.yaml"}
	root := cli.NewRootCommand(fs, &g, func() error { return nil }, cli.Handlers{
		Encode: func(_ context.Context, o cli.EncodeOptions) error {
			assert.Equal(t, 160, o.Config.SequenceLength)
			assert.Equal(t, 5, o.Config.RSNum)
			assert.InDelta(t, 0.45, o.Config.MinGC, 1e-9)
			return nil
		},
	})
	root.SetArgs([]string{"encode", "-c", "/c.yaml", "--rs-num", "5", "--min-gc", "45"})
	require.NoError(t, root.Execute())
}

func TestPrimerFile_ShortPrimersTightenMismatchLimit(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p.tsv", []byte("short\tACGTTGCA\tTGCAACGT\n"), 0o644))

	var g cli.Globals
	called := false
	root := cli.NewRootCommand(fs, &g, func() error { return nil }, cli.Handlers{
		Decode: func(_ context.Context, o cli.DecodeOptions) error {
			called = true
			assert.Equal(t, 8, o.Config.PrimerLength)
			assert.Equal(t, 2, o.Config.MaxPrimerMismatches())
			return nil
		},
	})
	root.SetArgs([]string{"decode", "/pool.txt", "--primers", "/p.tsv"})
	require.NoError(t, root.Execute())
	assert.True(t, called)
}

func TestDecode_MalformedPoolIsUsageError(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/pool.json", []byte(`{"dnaStrands": [`), 0o644))
	code, _, stderr := runApp(t, fs, "decode", "/pool.json")
	assert.Equal(t, 2, code, stderr)

	code, _, stderr = runApp(t, fs, "decode", "/absent.json")
	assert.Equal(t, 3, code, stderr)
}

func TestWriteOutput_FailedWriteLeavesNoFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := &runner{env: Env{FS: fs}}
	boom := errors.New("disk full")
	err := r.writeOutput("/out.txt", func(w io.Writer) error {
		_, _ = io.WriteString(w, "half")
		return boom
	})
	var ioe *cli.IOError
	require.ErrorAs(t, err, &ioe)
	assert.ErrorIs(t, err, boom)
	for _, p := range []string{"/out.txt", "/out.txt.partial"} {
		ok, err := afero.Exists(fs, p)
		require.NoError(t, err)
		assert.False(t, ok, p)
	}

	require.NoError(t, afero.WriteFile(fs, "/out.txt", []byte("old"), 0o644))
	require.Error(t, r.writeOutput("/out.txt", func(io.Writer) error { return boom }))
	got, err := afero.ReadFile(fs, "/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))

	require.NoError(t, r.writeOutput("/out.txt", func(w io.Writer) error {
		_, err := io.WriteString(w, "new")
		return err
	}))
	got, err = afero.ReadFile(fs, "/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestExitCode(t *testing.T) {
	r := &runner{started: true}
	ctx := context.Background()
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{&cli.UsageError{Err: errors.New("x")}, 2},
		{&codec.ConfigError{Field: "rs_num", Reason: "x"}, 2},
		{&cli.IOError{Err: errors.New("x")}, 3},
		{fmt.Errorf("decode: %w", &codec.MissingStrandsError{Indices: []int{1}}), 1},
		{context.Canceled, 130},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, r.exitCode(ctx, tc.err), "%v", tc.err)
	}
	assert.Equal(t, 2, (&runner{}).exitCode(ctx, errors.New("unknown command")))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "missing_strands", errorKind(&codec.MissingStrandsError{Indices: []int{3}}))
	assert.Equal(t, "invalid_configuration", errorKind(&codec.ConfigError{Field: "x"}))
	assert.Equal(t, "uncorrectable_block", errorKind(&codec.BlockError{Block: 0, Err: codec.ErrUncorrectableBlock}))
	assert.Equal(t, "constraint_violation", errorKind(&cli.ViolationError{Count: 2}))
	assert.Equal(t, "io", errorKind(&cli.IOError{Err: errors.New("x")}))
	assert.Equal(t, "internal", errorKind(errors.New("x")))
}

func TestAwait_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	err := await(ctx, func() error { ran = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}
