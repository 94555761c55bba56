package device

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type stubDevice struct {
	name    string
	waitErr error
	waits   int
	torn    bool
}

func (d *stubDevice) Name() string { return d.name }

func (d *stubDevice) WaitForCompletion() error {
	d.waits++
	return d.waitErr
}

func (d *stubDevice) Ping6(string, int, int, string) error      { return nil }
func (d *stubDevice) TimedPing6(string, int, int, string) error { return nil }
func (d *stubDevice) Ping6Sent() int                            { return 0 }
func (d *stubDevice) Ping6Received() int                        { return 0 }
func (d *stubDevice) Ping6RTT() time.Duration                   { return 0 }
func (d *stubDevice) Get(string) (string, error)                { return "", nil }
func (d *stubDevice) TearDown() error                           { d.torn = true; return nil }

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRegistryAddIgnoresNilAndDuplicates(t *testing.T) {
	t.Parallel()

	r := NewRegistry(testLogger())
	d := &stubDevice{name: "dev1"}

	require.False(t, r.Add(nil))
	require.True(t, r.Add(d))
	require.False(t, r.Add(d))
	require.Equal(t, 1, r.Len())
}

func TestRegistryClearDrainsInReverseAndIsIdempotent(t *testing.T) {
	t.Parallel()

	r := NewRegistry(testLogger())
	first := &stubDevice{name: "first"}
	second := &stubDevice{name: "second"}
	r.Add(first)
	r.Add(second)

	var removed []string
	r.Clear(func(d Device) {
		removed = append(removed, d.Name())
	})

	require.Equal(t, []string{"second", "first"}, removed)
	require.Zero(t, r.Len())

	// Second clear must be a no-op.
	r.Clear(func(Device) {
		t.Fatal("clear on empty registry must not call back")
	})
}

func TestRegistryWaitAllReturnsFirstError(t *testing.T) {
	t.Parallel()

	r := NewRegistry(testLogger())
	ok := &stubDevice{name: "ok"}
	bad := &stubDevice{name: "bad", waitErr: errors.New("ncp timeout")}
	after := &stubDevice{name: "after"}
	r.Add(ok)
	r.Add(bad)
	r.Add(after)

	err := r.WaitAll()
	require.EqualError(t, err, "ncp timeout")
	require.Equal(t, 1, ok.waits)
	require.Zero(t, after.waits, "wait stops at the first failing device")
}

func TestParseExtAddr(t *testing.T) {
	t.Parallel()

	addr, err := ParseExtAddr("[18b4300000000001]")
	require.NoError(t, err)
	require.Equal(t, uint64(0x18b4300000000001), addr)

	addr, err = ParseExtAddr(" [0A] ")
	require.NoError(t, err)
	require.Equal(t, uint64(0x0a), addr)

	for _, bad := range []string{"", "[]", "18b43", "[xyz]", "[18b43"} {
		_, err := ParseExtAddr(bad)
		require.Error(t, err, "input %q", bad)
	}
}
