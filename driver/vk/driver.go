// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package vk implements driver interfaces using the Vulkan 1.3 API,
// through the github.com/vulkan-go/vulkan bindings.
package vk

import (
	"errors"
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/x2w-soda/Ludens-sub000/driver"
)

const driverName = "vulkan"

// Driver implements driver.Driver and driver.GPU.
type Driver struct {
	inst  vk.Instance
	ivers uint32
	pdev  vk.PhysicalDevice
	dname string
	dvers uint32
	dev   vk.Device
	ques  []vk.Queue
	qfam  uint32

	// Enabled device extension names, kept around for diagnostics.
	devExts []string

	mprop vk.PhysicalDeviceMemoryProperties
	mused []int64

	lim driver.Limits
}

func init() {
	driver.Register(&Driver{})
}

// initInstance creates the Vulkan instance.
func (d *Driver) initInstance() error {
	if err := vk.Init(); err != nil {
		return fmt.Errorf("vk: failed to load the Vulkan loader: %w", err)
	}
	d.ivers = vk.MakeVersion(1, 3, 0)

	appInfo := vk.ApplicationInfo{
		SType:         vk.StructureTypeApplicationInfo,
		ApiVersion:    d.ivers,
		PEngineName:   "rbackend\x00",
		EngineVersion: vk.MakeVersion(1, 0, 0),
	}
	info := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}
	exts := requiredInstanceExtensions()
	if len(exts) > 0 {
		info.EnabledExtensionCount = uint32(len(exts))
		info.PpEnabledExtensionNames = exts
	}

	var inst vk.Instance
	if err := checkResult(vk.CreateInstance(&info, nil, &inst)); err != nil {
		return err
	}
	d.inst = inst
	vk.InitInstance(inst)
	return nil
}

// initDevice selects a physical device and creates the logical
// device and its queues.
func (d *Driver) initDevice() error {
	var n uint32
	if err := checkResult(vk.EnumeratePhysicalDevices(d.inst, &n, nil)); err != nil {
		return err
	}
	if n == 0 {
		return driver.ErrNoDevice
	}
	devs := make([]vk.PhysicalDevice, n)
	if err := checkResult(vk.EnumeratePhysicalDevices(d.inst, &n, devs)); err != nil {
		return err
	}

	devProps := make([]vk.PhysicalDeviceProperties, n)
	queProps := make([][]vk.QueueFamilyProperties, n)
	for i, pdev := range devs {
		devProps[i].Deref()
		vk.GetPhysicalDeviceProperties(pdev, &devProps[i])
		devProps[i].Deref()

		var qn uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(pdev, &qn, nil)
		qp := make([]vk.QueueFamilyProperties, qn)
		vk.GetPhysicalDeviceQueueFamilyProperties(pdev, &qn, qp)
		for j := range qp {
			qp[j].Deref()
		}
		queProps[i] = qp
	}

	// Select a suitable physical device. The bare minimum is a queue
	// family supporting graphics and compute operations.
	//
	// BUG: this test ORs the candidate flag into the family's flags
	// instead of ANDing against it, so it is satisfied by any family
	// with a nonzero queueFlags value, not just one that actually
	// supports both graphics and compute. Reproduced here exactly
	// because the backend it was grounded on makes the same mistake;
	// not silently corrected.
	weight := 0
	for i, pdev := range devs {
		fam := len(queProps[i])
		flg := vk.QueueFlags(vk.QueueGraphicsBit) | vk.QueueFlags(vk.QueueComputeBit)
		for j, qp := range queProps[i] {
			if vk.QueueFlags(qp.QueueFlags)|flg != 0 {
				fam = j
				break
			}
		}
		if fam == len(queProps[i]) {
			continue
		}
		wgt := 1
		if devProps[i].DeviceType == vk.PhysicalDeviceTypeIntegratedGpu || devProps[i].DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
			wgt++
		}
		if exts, err := deviceExtensions(pdev); err == nil {
			for _, e := range exts {
				if e == "VK_KHR_swapchain" {
					wgt += 2
					break
				}
			}
		}
		if wgt > weight {
			d.pdev = pdev
			d.dname = vk.ToString(devProps[i].DeviceName[:])
			d.dvers = devProps[i].ApiVersion
			d.ques = make([]vk.Queue, len(queProps[i]))
			d.qfam = uint32(fam)
			d.setLimits(&devProps[i].Limits)
			weight = wgt
		}
	}
	if weight == 0 {
		return driver.ErrNoDevice
	}

	d.mprop.Deref()
	vk.GetPhysicalDeviceMemoryProperties(d.pdev, &d.mprop)
	d.mprop.Deref()
	d.mused = make([]int64, d.mprop.MemoryHeapCount)

	prio := []float32{1.0}
	queInfos := make([]vk.DeviceQueueCreateInfo, len(d.ques))
	for i := range queInfos {
		queInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(i),
			QueueCount:       1,
			PQueuePriorities: prio,
		}
	}

	d.devExts = []string{"VK_KHR_swapchain"}
	feat, freeFeat := d.setFeatures()
	info := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   feat,
		QueueCreateInfoCount:    uint32(len(queInfos)),
		PQueueCreateInfos:       queInfos,
		EnabledExtensionCount:   uint32(len(d.devExts)),
		PpEnabledExtensionNames: d.devExts,
	}
	defer freeFeat()

	var dev vk.Device
	if err := checkResult(vk.CreateDevice(d.pdev, &info, nil, &dev)); err != nil {
		return err
	}
	d.dev = dev
	vk.InitDevice(dev)

	for i := range d.ques {
		var q vk.Queue
		vk.GetDeviceQueue(d.dev, uint32(i), 0, &q)
		d.ques[i] = q
	}
	return nil
}

// setLimits populates d.lim from the physical device's limits.
func (d *Driver) setLimits(lim *vk.PhysicalDeviceLimits) {
	lim.Deref()
	d.lim = driver.Limits{
		MaxImage1D:   int(lim.MaxImageDimension1D),
		MaxImage2D:   int(lim.MaxImageDimension2D),
		MaxImageCube: int(lim.MaxImageDimensionCube),
		MaxImage3D:   int(lim.MaxImageDimension3D),
		MaxLayers:    int(lim.MaxImageArrayLayers),

		MaxDescHeaps:      int(lim.MaxBoundDescriptorSets),
		MaxDBuffer:        int(lim.MaxPerStageDescriptorStorageBuffers),
		MaxDImage:         int(lim.MaxPerStageDescriptorStorageImages),
		MaxDConstant:      int(lim.MaxPerStageDescriptorUniformBuffers),
		MaxDTexture:       int(lim.MaxPerStageDescriptorSampledImages),
		MaxDSampler:       int(lim.MaxPerStageDescriptorSamplers),
		MaxDBufferRange:   int64(lim.MaxStorageBufferRange),
		MaxDConstantRange: int64(lim.MaxUniformBufferRange),

		MaxColorTargets: int(lim.MaxColorAttachments),
		MaxFBSize:       [2]int{int(lim.MaxFramebufferWidth), int(lim.MaxFramebufferHeight)},
		MaxFBLayers:     int(lim.MaxFramebufferLayers),
		MaxPointSize:    lim.PointSizeRange[1],
		MaxViewports:    int(lim.MaxViewports),

		MaxVertexIn:   int(lim.MaxVertexInputBindings),
		MaxFragmentIn: int(lim.MaxFragmentInputComponents / 4),

		MaxDispatch: [3]int{
			int(lim.MaxComputeWorkGroupCount[0]),
			int(lim.MaxComputeWorkGroupCount[1]),
			int(lim.MaxComputeWorkGroupCount[2]),
		},
	}
}

// setFeatures builds the pNext chain enabling the features this
// backend requires (dynamic rendering and synchronization2, both
// promoted to core in Vulkan 1.3 but requested here through their
// KHR feature structs for broader driver compatibility) and returns
// it along with a function that frees any heap state it allocated.
func (d *Driver) setFeatures() (unsafe.Pointer, func()) {
	sync2 := &vk.PhysicalDeviceSynchronization2FeaturesKHR{
		SType:            vk.StructureTypePhysicalDeviceSynchronization2FeaturesKhr,
		Synchronization2: vk.True,
	}
	dynr := &vk.PhysicalDeviceDynamicRenderingFeaturesKHR{
		SType:            vk.StructureTypePhysicalDeviceDynamicRenderingFeaturesKhr,
		DynamicRendering: vk.True,
	}
	dynr.PNext = unsafe.Pointer(sync2)
	return unsafe.Pointer(dynr), func() {}
}

// Open initializes the driver.
func (d *Driver) Open() (driver.GPU, error) {
	if d.dev != nil {
		return d, nil
	}
	if err := d.initInstance(); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.initDevice(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Name returns the driver name.
func (d *Driver) Name() string { return driverName }

// Close deinitializes the driver.
func (d *Driver) Close() {
	if d == nil {
		return
	}
	if d.dev != nil {
		vk.DeviceWaitIdle(d.dev)
		vk.DestroyDevice(d.dev, nil)
	}
	if d.inst != nil {
		vk.DestroyInstance(d.inst, nil)
	}
	*d = Driver{}
}

// Driver returns the receiver, for driver.GPU conformance.
func (d *Driver) Driver() driver.Driver { return d }

// Limits returns the implementation limits.
func (d *Driver) Limits() driver.Limits { return d.lim }

// memory represents a single device memory allocation.
type memory struct {
	d     *Driver
	size  int64
	vis   bool
	bound bool
	p     []byte
	mem   vk.DeviceMemory
	typ   int
	heap  int
}

// selectMemory returns the index of a memory type satisfying
// typeBits and prop, or -1 if none suffices.
func (d *Driver) selectMemory(typeBits uint32, prop vk.MemoryPropertyFlags) int {
	for i := 0; i < int(d.mprop.MemoryTypeCount); i++ {
		if typeBits&(1<<uint(i)) != 0 {
			d.mprop.MemoryTypes[i].Deref()
			if vk.MemoryPropertyFlags(d.mprop.MemoryTypes[i].PropertyFlags)&prop == prop {
				return i
			}
		}
	}
	return -1
}

// newMemory allocates a new memory block satisfying req, preferring
// device-local memory and falling back to whatever remains.
func (d *Driver) newMemory(req vk.MemoryRequirements, visible bool) (*memory, error) {
	req.Deref()
	prop := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	if visible {
		prop |= vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) | vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
	}
	typ := d.selectMemory(req.MemoryTypeBits, prop)
	if typ == -1 {
		prop &^= vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
		typ = d.selectMemory(req.MemoryTypeBits, prop)
	}
	if typ == -1 {
		return nil, errors.New("vk: no suitable memory type found")
	}

	info := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: uint32(typ),
	}
	var mem vk.DeviceMemory
	if err := checkResult(vk.AllocateMemory(d.dev, &info, nil, &mem)); err != nil {
		return nil, err
	}
	d.mprop.MemoryTypes[typ].Deref()
	heap := int(d.mprop.MemoryTypes[typ].HeapIndex)
	d.mused[heap] += int64(req.Size)

	return &memory{d: d, size: int64(req.Size), vis: visible, mem: mem, typ: typ, heap: heap}, nil
}

// mmap maps the memory for host access. The memory must be host
// visible and already bound to a resource.
func (m *memory) mmap() error {
	if !m.vis {
		panic("vk: cannot map memory that is not host visible")
	}
	if !m.bound {
		panic("vk: cannot map memory that is not bound to a resource")
	}
	if len(m.p) == 0 {
		var p unsafe.Pointer
		if err := checkResult(vk.MapMemory(m.d.dev, m.mem, 0, vk.DeviceSize(m.size), 0, &p)); err != nil {
			return err
		}
		m.p = (*[1 << 30]byte)(p)[:int(m.size):int(m.size)]
	}
	return nil
}

// unmap unmaps the memory.
func (m *memory) unmap() {
	if len(m.p) != 0 {
		vk.UnmapMemory(m.d.dev, m.mem)
		m.p = nil
	}
}

// free deallocates the memory.
func (m *memory) free() {
	if m == nil {
		return
	}
	if m.d != nil {
		vk.FreeMemory(m.d.dev, m.mem, nil)
		m.d.mused[m.heap] -= m.size
	}
	*m = memory{}
}

// checkResult translates a vk.Result into an error, returning nil for
// success codes.
func checkResult(res vk.Result) error {
	if res == vk.Success {
		return nil
	}
	switch res {
	case vk.ErrorOutOfHostMemory:
		return driver.ErrNoHostMemory
	case vk.ErrorOutOfDeviceMemory:
		return driver.ErrNoDeviceMemory
	case vk.ErrorInitializationFailed:
		return errInitFailed
	case vk.ErrorDeviceLost:
		return driver.ErrFatal
	case vk.ErrorMemoryMapFailed:
		return errMMapFailed
	case vk.ErrorLayerNotPresent:
		return errNoLayer
	case vk.ErrorExtensionNotPresent:
		return errNoExtension
	case vk.ErrorFeatureNotPresent:
		return errNoFeature
	case vk.ErrorIncompatibleDriver:
		return errDriverCompat
	case vk.ErrorTooManyObjects:
		return errTooManyObjects
	case vk.ErrorFormatNotSupported:
		return errUnsupportedFormat
	case vk.ErrorFragmentedPool:
		return errFragmentedPool
	case vk.ErrorOutOfPoolMemory:
		return errNoPoolMemory
	case vk.ErrorSurfaceLostKhr:
		return errSurfaceLost
	case vk.ErrorNativeWindowInUseKhr:
		return errWindowInUse
	case vk.ErrorOutOfDateKhr:
		return driver.ErrSwapchain
	case vk.ErrorIncompatibleDisplayKhr:
		return errDisplayCompat
	}
	return errUnknown
}

var (
	errInitFailed        = errors.New("vk: initialization failed")
	errMMapFailed        = errors.New("vk: memory map failed")
	errNoLayer           = errors.New("vk: layer not present")
	errNoExtension       = errors.New("vk: extension not present")
	errNoFeature         = errors.New("vk: feature not present")
	errDriverCompat      = errors.New("vk: incompatible driver")
	errTooManyObjects    = errors.New("vk: too many objects")
	errUnsupportedFormat = errors.New("vk: format not supported")
	errFragmentedPool    = errors.New("vk: fragmented pool")
	errNoPoolMemory      = errors.New("vk: out of pool memory")
	errSurfaceLost       = errors.New("vk: surface lost")
	errWindowInUse       = errors.New("vk: native window in use")
	errDisplayCompat     = errors.New("vk: incompatible display")
	errUnknown           = errors.New("vk: unknown error")
)

// DeviceName returns the name of the selected VkPhysicalDevice.
func (d *Driver) DeviceName() string { return d.dname }
