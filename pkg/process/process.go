// Package process 提供当前进程的资源统计
package process

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// Stats 进程资源快照
type Stats struct {
	PID       int     `json:"pid"`
	RSS       uint64  `json:"rss"`
	VMS       uint64  `json:"vms"`
	CPUUser   float64 `json:"cpu_user"`
	CPUSystem float64 `json:"cpu_system"`
}

// Snapshot 获取当前进程的内存与 CPU 占用
func Snapshot() (*Stats, error) {
	return SnapshotPID(os.Getpid())
}

// SnapshotPID 获取指定进程的内存与 CPU 占用
func SnapshotPID(pid int) (*Stats, error) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, fmt.Errorf("获取进程失败: %w", err)
	}

	mem, err := proc.MemoryInfo()
	if err != nil {
		return nil, fmt.Errorf("获取内存信息失败: %w", err)
	}

	stats := &Stats{
		PID: pid,
		RSS: mem.RSS,
		VMS: mem.VMS,
	}

	// 部分平台不提供 CPU 时间，忽略即可
	if times, err := proc.Times(); err == nil {
		stats.CPUUser = times.User
		stats.CPUSystem = times.System
	}

	return stats, nil
}

// String 返回可读的统计信息
func (s *Stats) String() string {
	return fmt.Sprintf("pid=%d rss=%s vms=%s cpu_user=%.2fs cpu_sys=%.2fs",
		s.PID, formatBytes(s.RSS), formatBytes(s.VMS), s.CPUUser, s.CPUSystem)
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
