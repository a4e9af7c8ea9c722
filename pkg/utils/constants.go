package utils

const (
	JiffiesPerSecond  = 100
	NanosecondsPerSec = 1_000_000_000

	ProcDir       = "/proc"
	ProcStat      = "/proc/stat"
	ProcCPUInfo   = "/proc/cpuinfo"
	ProcLoadavg   = "/proc/loadavg"
	ProcMeminfo   = "/proc/meminfo"
	ProcSelfIO    = "/proc/self/io"
	ProcSelfStatm = "/proc/self/statm"

	SysPowerSupply = "/sys/class/power_supply"
	SysClassNet    = "/sys/class/net"
	SysClassDrm    = "/sys/class/drm"

	LoopbackInterface = "lo"
)
