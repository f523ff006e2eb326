// internal/device/sysfs.go
package device

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// SysfsResolver detects accelerators by walking /sys/class/drm/card* and
// reading each card's kernel driver. NVIDIA cards are enriched with the
// model name from /proc/driver/nvidia/gpus when the proprietary driver is
// loaded.
type SysfsResolver struct {
	// sysRoot and procRoot default to "/sys" and "/proc"; tests point them
	// at synthetic trees.
	sysRoot  string
	procRoot string
}

// NewSysfsResolver creates a resolver reading the real /sys and /proc.
func NewSysfsResolver() *SysfsResolver {
	return &SysfsResolver{sysRoot: "/sys", procRoot: "/proc"}
}

func newSysfsResolverFrom(sysRoot, procRoot string) *SysfsResolver {
	return &SysfsResolver{sysRoot: sysRoot, procRoot: procRoot}
}

// Resolve implements Resolver.
func (r *SysfsResolver) Resolve(ctx context.Context, req Request) (ExecutionContext, error) {
	if err := ctx.Err(); err != nil {
		return ExecutionContext{}, err
	}
	ec, err := place(req.Device, r.Enumerate())
	if err != nil {
		return ExecutionContext{}, err
	}
	return applyPolicy(ec, req.LowVRAM), nil
}

// Enumerate returns the detected accelerators ordered by card number.
// Returns nil when none are found or sysfs is unreadable.
func (r *SysfsResolver) Enumerate() []Accelerator {
	drmBase := filepath.Join(r.sysRoot, "class/drm")
	entries, err := os.ReadDir(drmBase)
	if err != nil {
		return nil
	}

	type card struct {
		num  int
		path string
	}
	var cards []card
	for _, entry := range entries {
		num, ok := cardNumber(entry.Name())
		if !ok {
			continue
		}
		cards = append(cards, card{num: num, path: filepath.Join(drmBase, entry.Name(), "device")})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].num < cards[j].num })

	var accels []Accelerator
	for _, c := range cards {
		driver := readLinkBase(filepath.Join(c.path, "driver"))
		switch driver {
		case "nvidia", "nouveau", "amdgpu":
		default:
			continue
		}
		accel := Accelerator{
			Name:   fmt.Sprintf("cuda:%d", len(accels)),
			Driver: driver,
		}
		if driver == "nvidia" {
			accel.Model = r.nvidiaModel(readLinkBase(c.path))
		}
		accels = append(accels, accel)
	}
	return accels
}

// nvidiaModel reads the "Model:" line of the proprietary driver's
// per-GPU information file.
func (r *SysfsResolver) nvidiaModel(pciAddr string) string {
	if pciAddr == "" {
		return ""
	}
	f, err := os.Open(filepath.Join(r.procRoot, "driver/nvidia/gpus", pciAddr, "information"))
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if ok && strings.TrimSpace(key) == "Model" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// cardNumber parses "cardN". Connector entries such as "card0-DP-1" are
// rejected.
func cardNumber(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "card")
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

func readLinkBase(path string) string {
	target, err := os.Readlink(path)
	if err != nil {
		return ""
	}
	return filepath.Base(target)
}
