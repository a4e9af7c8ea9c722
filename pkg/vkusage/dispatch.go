// Package vkusage estimates GPU busy time for an overlay by instrumenting a
// Vulkan-style submission queue with timestamp query pairs. It is designed to
// run inside the host application's submission and presentation paths: it
// never fails or blocks the host's own work, and it degrades to plain
// pass-through submission whenever instrumentation cannot be guaranteed
// correct.
package vkusage

// Opaque driver handles. The host-integration shim maps these to the real
// API objects; the sampler only ever passes them back through the dispatch
// table.
type (
	Queue         uint64
	Fence         uint64
	Semaphore     uint64
	CommandBuffer uint64
	CommandPool   uint64
	QueryPool     uint64
)

// Result mirrors the driver result codes the sampler needs to distinguish.
// Values match the corresponding VkResult codes so the shim can pass them
// through unchanged.
type Result int32

const (
	Success  Result = 0
	NotReady Result = 1

	ErrOutOfHostMemory      Result = -1
	ErrInitializationFailed Result = -3
	ErrDeviceLost           Result = -4
)

// Failed reports whether r is an error code (as opposed to a success or
// status code such as NotReady).
func (r Result) Failed() bool { return r < 0 }

// PipelineStage selects where a timestamp is written relative to the
// submitted work.
type PipelineStage uint32

const (
	StageTopOfPipe    PipelineStage = 0x00000001
	StageBottomOfPipe PipelineStage = 0x00002000
)

// TimestampResult is one query slot's readback: the raw tick value and
// whether the GPU has made it available yet.
type TimestampResult struct {
	Ticks     uint64
	Available bool
}

// Dispatch is the table of driver entry points the sampler calls. The shim
// fills it from the real dispatch table at layer init. QueueSubmit2 may be
// nil when the newer multi-batch entry point is absent; every other field is
// required.
//
// GetQueryPoolResults must not wait for unavailable queries: it either fills
// each TimestampResult's Available flag and returns Success, or reports
// wholesale unavailability with NotReady. The sampler retries on its own
// cadence.
type Dispatch struct {
	QueueSubmit  func(queue Queue, batches []Batch, fence Fence) Result
	QueueSubmit2 func(queue Queue, batches []Batch2, fence Fence) Result

	CreateQueryPool     func(queryCount uint32) (QueryPool, Result)
	DestroyQueryPool    func(pool QueryPool)
	GetQueryPoolResults func(pool QueryPool, first, count uint32, results []TimestampResult) Result

	CreateCommandPool      func(queueFamily uint32) (CommandPool, Result)
	ResetCommandPool       func(pool CommandPool) Result
	DestroyCommandPool     func(pool CommandPool)
	AllocateCommandBuffers func(pool CommandPool, count uint32) ([]CommandBuffer, Result)
	FreeCommandBuffers     func(pool CommandPool, buffers []CommandBuffer)

	BeginCommandBuffer func(cb CommandBuffer) Result
	EndCommandBuffer   func(cb CommandBuffer) Result
	CmdResetQueryPool  func(cb CommandBuffer, pool QueryPool, first, count uint32)
	CmdWriteTimestamp  func(cb CommandBuffer, stage PipelineStage, pool QueryPool, query uint32)
}

func (d *Dispatch) complete() bool {
	return d.QueueSubmit != nil &&
		d.CreateQueryPool != nil &&
		d.DestroyQueryPool != nil &&
		d.GetQueryPoolResults != nil &&
		d.CreateCommandPool != nil &&
		d.ResetCommandPool != nil &&
		d.DestroyCommandPool != nil &&
		d.AllocateCommandBuffers != nil &&
		d.FreeCommandBuffers != nil &&
		d.BeginCommandBuffer != nil &&
		d.EndCommandBuffer != nil &&
		d.CmdResetQueryPool != nil &&
		d.CmdWriteTimestamp != nil
}

// DeviceCaps describes the timer capabilities of the monitored device's
// primary submission queue family.
type DeviceCaps struct {
	// TimestampPeriodNs is the duration of one timer tick in nanoseconds.
	TimestampPeriodNs float64
	// TimestampValidBits is the number of meaningful low bits in a raw
	// timestamp; the counter wraps at 1<<TimestampValidBits.
	TimestampValidBits uint32
	// QueueFamily is the queue family index whose submissions are sampled.
	QueueFamily uint32
}

// PresentInfo carries the presentation parameters the shim observed. The
// sampler keys only off the call itself but keeps the shape of the original
// hook signature.
type PresentInfo struct {
	SwapchainIndex uint32
	ImageIndex     uint32
}

// Batch is the classic single-struct submission shape (one VkSubmitInfo).
type Batch struct {
	WaitSemaphores   []Semaphore
	SignalSemaphores []Semaphore
	Commands         []CommandBuffer
}

// CommandBufferInfo wraps a command buffer in the newer submission shape.
type CommandBufferInfo struct {
	Command    CommandBuffer
	DeviceMask uint32
}

// SemaphoreInfo is a semaphore operation in the newer submission shape.
type SemaphoreInfo struct {
	Semaphore Semaphore
	Value     uint64
	Stage     PipelineStage
}

// Batch2 is the newer submission shape with explicit info structs
// (one VkSubmitInfo2).
type Batch2 struct {
	WaitSemaphores   []SemaphoreInfo
	SignalSemaphores []SemaphoreInfo
	Commands         []CommandBufferInfo
}

// submitBatch abstracts over the two submission shapes so the reservation,
// recording and commit logic is written once. withMarkers must return a copy
// of the batch with a begin marker prepended and an end marker appended,
// leaving the receiver's backing storage untouched.
type submitBatch[B any] interface {
	commandCount() int
	withMarkers(begin, end CommandBuffer) B
}

func (b Batch) commandCount() int { return len(b.Commands) }

func (b Batch) withMarkers(begin, end CommandBuffer) Batch {
	cbs := make([]CommandBuffer, 0, len(b.Commands)+2)
	cbs = append(cbs, begin)
	cbs = append(cbs, b.Commands...)
	cbs = append(cbs, end)
	b.Commands = cbs
	return b
}

func (b Batch2) commandCount() int { return len(b.Commands) }

func (b Batch2) withMarkers(begin, end CommandBuffer) Batch2 {
	cbs := make([]CommandBufferInfo, 0, len(b.Commands)+2)
	cbs = append(cbs, CommandBufferInfo{Command: begin})
	cbs = append(cbs, b.Commands...)
	cbs = append(cbs, CommandBufferInfo{Command: end})
	b.Commands = cbs
	return b
}
