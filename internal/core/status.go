package core

import (
	"fmt"
	"net"
	"os"
	"time"
)

const startedAtLayout = "2006-01-02 15:04:05"

// Status is a snapshot of the host and session.
type Status struct {
	DeviceLabel string
	IP          string
	Hostname    string
	WorkingDir  string
	Uptime      time.Duration
	StartedAt   time.Time
}

// String renders the status report.
func (s Status) String() string {
	return fmt.Sprintf("🖥️ %s (%s)\n\nHostname: %s\nCWD: %s\nUptime: %s\nStarted: %s",
		s.DeviceLabel, s.IP, s.Hostname, s.WorkingDir,
		FormatUptime(s.Uptime), s.StartedAt.Format(startedAtLayout))
}

// FormatUptime renders d as "Xd Xh Xm Xs", dropping leading zero units.
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// Hostname returns the network host name, or "unknown".
func Hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "unknown"
	}
	return name
}

// LookupIP resolves host to its first IPv4 address, or "Unknown".
func LookupIP(host string) string {
	ips, err := net.LookupIP(host)
	if err != nil {
		return "Unknown"
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4.String()
		}
	}
	return "Unknown"
}
