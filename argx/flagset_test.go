package argx

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.eggybyte.com/argconf/core/value"
	"go.eggybyte.com/argconf/testingx"
)

func demoCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "demo"}
	cmd.Flags().StringP("input", "i", "", "input file")
	cmd.Flags().BoolP("verbose", "v", false, "verbose output")
	cmd.Flags().BoolP("debug", "d", false, "debug output")
	cmd.Flags().StringArrayP("tag", "t", nil, "tag, repeatable")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v) error = %v", args, err)
	}
	return cmd
}

func TestFromCommand_Collect(t *testing.T) {
	cmd := demoCommand(t, "-v", "-i", "filename", "-t", "tagone", "-t", "tagtwo")

	got, err := New(FromCommand(cmd)).Collect()
	testingx.AssertNoError(t, err)

	want := value.Map{
		"input":   value.NewString(Origin, "filename"),
		"verbose": value.NewBool(Origin, true),
		"debug":   value.NewBool(Origin, false),
		"tag":     value.NewStrings(Origin, []string{"tagone", "tagtwo"}),
	}
	testingx.AssertValues(t, got, want)
}

func TestFromCommand_SingleTag(t *testing.T) {
	cmd := demoCommand(t, "-t", "tagone")

	inferred, err := New(FromCommand(cmd)).Collect()
	testingx.AssertNoError(t, err)
	testingx.AssertValue(t, inferred["tag"], value.NewString(Origin, "tagone"))

	if _, err := inferred["tag"].AsArray(); err == nil {
		t.Error("single inferred tag should not decode as a list")
	}

	hinted, err := NewWithMetadata(FromCommand(cmd), Metadata{"tag": value.KindArray}).Collect()
	testingx.AssertNoError(t, err)
	testingx.AssertValue(t, hinted["tag"], value.NewStrings(Origin, []string{"tagone"}))
}

func TestFromCommand_UnsetStringsAreNotRecognized(t *testing.T) {
	store := FromCommand(demoCommand(t))

	got := store.Keys()
	want := []string{"debug", "verbose"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if n := store.Count("tag"); n != 0 {
		t.Errorf("Count(tag) = %d, want 0", n)
	}
	if _, ok := store.One("input"); ok {
		t.Error("One(input) should report no value")
	}
}

func TestFromCommand_ExcludesHostFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "demo"}
	cmd.Flags().String("config", "", "config file")
	cmd.Flags().String("input", "", "input file")
	cmd.Flags().Bool("help", false, "help")
	if err := cmd.ParseFlags([]string{"--config", "app.yaml", "--input", "a.txt"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	store := FromCommand(cmd, ExcludeFlags("config"))
	if store.Has("config") || store.Has("help") {
		t.Error("excluded flags should not be visible")
	}

	got, err := New(store).Collect()
	testingx.AssertNoError(t, err)
	testingx.AssertValues(t, got, value.Map{"input": value.NewString(Origin, "a.txt")})
}

func TestFromCommand_InheritedFlags(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().String("region", "", "region")
	child := &cobra.Command{Use: "child", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(child)

	if err := child.ParseFlags([]string{"--region", "eu-west"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	got, err := New(FromCommand(child)).Collect()
	testingx.AssertNoError(t, err)
	testingx.AssertValues(t, got, value.Map{"region": value.NewString(Origin, "eu-west")})
}

func TestFlagSetStore_DeclaredTypes(t *testing.T) {
	fs := pflag.NewFlagSet("types", pflag.ContinueOnError)
	fs.Bool("verbose", false, "")
	fs.String("input", "", "")
	fs.StringSlice("names", nil, "")
	fs.StringArray("tag", nil, "")
	fs.Int("retries", 0, "")
	fs.Duration("timeout", 0, "")
	fs.Count("level", "")

	store := NewFlagSetStore(fs)
	tests := []struct {
		key  string
		want DeclaredType
	}{
		{"verbose", TypeBool},
		{"input", TypeString},
		{"names", TypeString},
		{"tag", TypeString},
		{"retries", TypeOther},
		{"timeout", TypeOther},
		{"level", TypeOther},
	}
	for _, tt := range tests {
		got, ok := store.DeclaredType(tt.key)
		if !ok || got != tt.want {
			t.Errorf("DeclaredType(%s) = %s, %v; want %s, true", tt.key, got, ok, tt.want)
		}
	}

	if _, ok := store.DeclaredType("missing"); ok {
		t.Error("DeclaredType(missing) should report no type")
	}
}

func TestFlagSetStore_OtherTypesAndSlices(t *testing.T) {
	fs := pflag.NewFlagSet("other", pflag.ContinueOnError)
	fs.Int("retries", 1, "")
	fs.Duration("timeout", 5*time.Second, "")
	fs.StringSlice("names", nil, "")
	if err := fs.Parse([]string{"--retries", "3", "--names", "a,b", "--names", "c"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got, err := New(NewFlagSetStore(fs)).Collect()
	testingx.AssertNoError(t, err)

	want := value.Map{
		"retries": value.NewString(Origin, "3"),
		"timeout": value.NewString(Origin, "5s"),
		"names":   value.NewStrings(Origin, []string{"a", "b", "c"}),
	}
	testingx.AssertValues(t, got, want)

	n, err := got["retries"].AsInt()
	testingx.AssertNoError(t, err)
	if n != 3 {
		t.Errorf("AsInt() = %d, want 3", n)
	}
}

func TestFlagSetStore_Bool(t *testing.T) {
	fs := pflag.NewFlagSet("bool", pflag.ContinueOnError)
	fs.Bool("verbose", false, "")
	fs.String("input", "x", "")
	if err := fs.Parse([]string{"--verbose"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	store := NewFlagSetStore(fs)

	if b, ok := store.Bool("verbose"); !ok || !b {
		t.Errorf("Bool(verbose) = %v, %v; want true, true", b, ok)
	}
	if _, ok := store.Bool("input"); ok {
		t.Error("Bool(input) should fail for a string flag")
	}
	if v, ok := store.One("input"); !ok || v != "x" {
		t.Errorf("One(input) = %q, %v; want x, true", v, ok)
	}
}

func TestFlagSetStore_EmptySliceIsNotRecognized(t *testing.T) {
	fs := pflag.NewFlagSet("empty", pflag.ContinueOnError)
	fs.StringSlice("tag", nil, "")
	fs.String("input", "", "")
	if err := fs.Parse([]string{"--tag=", "--input", "x"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	store := NewFlagSetStore(fs)

	if !store.Has("tag") {
		t.Error("Has(tag) = false; the flag exists")
	}
	if n := store.Count("tag"); n != 0 {
		t.Errorf("Count(tag) = %d, want 0", n)
	}

	got, err := New(store).Collect()
	testingx.AssertNoError(t, err)
	testingx.AssertValues(t, got, value.Map{
		"input": value.NewString(Origin, "x"),
	})
}
