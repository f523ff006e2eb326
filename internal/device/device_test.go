package device

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyedDaiam9101/conditioning-service/internal/tensor"
)

// fakeCard creates sys/class/drm/cardN/device with a driver symlink and a
// device symlink pointing at a PCI address.
func fakeCard(t *testing.T, sysRoot string, num int, driver, pciAddr string) {
	t.Helper()
	devices := filepath.Join(sysRoot, "devices", pciAddr)
	require.NoError(t, os.MkdirAll(devices, 0o755))
	drivers := filepath.Join(sysRoot, "bus/pci/drivers", driver)
	require.NoError(t, os.MkdirAll(drivers, 0o755))
	require.NoError(t, os.Symlink(drivers, filepath.Join(devices, "driver")))

	cardDir := filepath.Join(sysRoot, "class/drm", "card"+strconv.Itoa(num))
	require.NoError(t, os.MkdirAll(cardDir, 0o755))
	require.NoError(t, os.Symlink(devices, filepath.Join(cardDir, "device")))
}

func TestSysfsResolver_NoDRM(t *testing.T) {
	r := newSysfsResolverFrom(t.TempDir(), t.TempDir())
	assert.Empty(t, r.Enumerate())

	ec, err := r.Resolve(context.Background(), Request{Device: Auto})
	require.NoError(t, err)
	assert.Equal(t, CPU, ec.Device)
	assert.False(t, ec.Accelerator)
	assert.False(t, ec.Constrained)
	assert.True(t, ec.AllowAttention)
	assert.Equal(t, tensor.Float64, ec.WorkingDType)
}

func TestSysfsResolver_DetectsAccelerators(t *testing.T) {
	sysRoot, procRoot := t.TempDir(), t.TempDir()
	fakeCard(t, sysRoot, 1, "nvidia", "0000:01:00.0")
	fakeCard(t, sysRoot, 0, "i915", "0000:00:02.0")
	fakeCard(t, sysRoot, 2, "amdgpu", "0000:03:00.0")
	// connector entries are ignored
	require.NoError(t, os.MkdirAll(filepath.Join(sysRoot, "class/drm/card1-DP-1"), 0o755))

	infoDir := filepath.Join(procRoot, "driver/nvidia/gpus/0000:01:00.0")
	require.NoError(t, os.MkdirAll(infoDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(infoDir, "information"),
		[]byte("Model: \t\t NVIDIA GeForce RTX 4090\nIRQ: 42\n"), 0o644))

	r := newSysfsResolverFrom(sysRoot, procRoot)
	accels := r.Enumerate()
	require.Len(t, accels, 2)
	assert.Equal(t, Accelerator{Name: "cuda:0", Driver: "nvidia", Model: "NVIDIA GeForce RTX 4090"}, accels[0])
	assert.Equal(t, Accelerator{Name: "cuda:1", Driver: "amdgpu"}, accels[1])

	ec, err := r.Resolve(context.Background(), Request{Device: Auto})
	require.NoError(t, err)
	assert.Equal(t, "cuda:0", ec.Device)
	assert.True(t, ec.Accelerator)
	assert.True(t, ec.Constrained)

	ec, err = r.Resolve(context.Background(), Request{Device: "gpu:1"})
	require.NoError(t, err)
	assert.Equal(t, "cuda:1", ec.Device)

	ec, err = r.Resolve(context.Background(), Request{Device: "cpu"})
	require.NoError(t, err)
	assert.Equal(t, CPU, ec.Device)
	assert.False(t, ec.Constrained)
}

func TestSysfsResolver_UnknownDevice(t *testing.T) {
	r := newSysfsResolverFrom(t.TempDir(), t.TempDir())
	for _, dev := range []string{"cuda:0", "cuda", "tpu", "gpu:x"} {
		_, err := r.Resolve(context.Background(), Request{Device: dev})
		require.Error(t, err, dev)
		assert.True(t, errors.Is(err, ErrUnknownDevice), dev)
	}
}

func TestLowVRAMPolicy(t *testing.T) {
	r := newSysfsResolverFrom(t.TempDir(), t.TempDir())
	ec, err := r.Resolve(context.Background(), Request{Device: CPU, LowVRAM: true})
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, ec.WorkingDType)
	assert.False(t, ec.AllowAttention)
	assert.True(t, ec.Constrained)
}

func TestStaticResolver(t *testing.T) {
	r := StaticResolver{Context: Host()}

	ec, err := r.Resolve(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, Host(), ec)

	ec, err = r.Resolve(context.Background(), Request{LowVRAM: true})
	require.NoError(t, err)
	assert.False(t, ec.AllowAttention)
	assert.Equal(t, tensor.Float32, ec.WorkingDType)
}

func TestResolve_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSysfsResolver().Resolve(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}
