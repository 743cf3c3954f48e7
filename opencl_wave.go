//go:build opencl

package main

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

// Per-grid field buffers, structure of arrays.
const (
	fieldP = iota
	fieldVx
	fieldVy
	fieldVz
	fieldRho
	fieldC
	fieldCount
)

type openCLFieldSolver struct {
	context        *cl.Context
	queue          *cl.CommandQueue
	program        *cl.Program
	velocityKernel *cl.Kernel
	pressureKernel *cl.Kernel
	coeffBuf       *cl.MemObject
	pressureBufs   [fieldCount]*cl.MemObject
	velocityBufs   [fieldCount]*cl.MemObject
	size           int
	scratch        [fieldCount][]float64
	deviceName     string
	coldStart      bool
}

const leapfrogKernelSource = `#pragma OPENCL EXTENSION cl_khr_fp64 : enable

inline int clamp_index(int x, int y, int z, int nx, int ny, int nz)
{
    x = clamp(x, 0, nx - 1);
    y = clamp(y, 0, ny - 1);
    z = clamp(z, 0, nz - 1);
    return x + y * nx + z * nx * ny;
}

__kernel void velocity_step(
    const int nx,
    const int ny,
    const int nz,
    __global const double* coeff,
    __global const double* p_pressure,
    __global const double* p_vx,
    __global const double* p_vy,
    __global const double* p_vz,
    __global const double* v_density,
    __global double* v_vx,
    __global double* v_vy,
    __global double* v_vz)
{
    int idx = get_global_id(0);
    if (idx >= nx * ny * nz) {
        return;
    }
    int x = idx % nx;
    int y = (idx / nx) % ny;
    int z = idx / (nx * ny);
    double f = coeff[0] / v_density[idx];
    double p0 = p_pressure[idx];
    v_vx[idx] = p_vx[idx] - f * (p_pressure[clamp_index(x + 1, y, z, nx, ny, nz)] - p0);
    v_vy[idx] = p_vy[idx] - f * (p_pressure[clamp_index(x, y + 1, z, nx, ny, nz)] - p0);
    v_vz[idx] = p_vz[idx] - f * (p_pressure[clamp_index(x, y, z + 1, nx, ny, nz)] - p0);
}

__kernel void pressure_step(
    const int nx,
    const int ny,
    const int nz,
    __global const double* coeff,
    __global const double* v_pressure,
    __global const double* v_vx,
    __global const double* v_vy,
    __global const double* v_vz,
    __global const double* p_density,
    __global const double* p_speed,
    __global double* p_pressure)
{
    int idx = get_global_id(0);
    if (idx >= nx * ny * nz) {
        return;
    }
    int x = idx % nx;
    int y = (idx / nx) % ny;
    int z = idx / (nx * ny);
    double f = p_density[idx] * p_speed[idx] * p_speed[idx] * coeff[0];
    p_pressure[idx] = v_pressure[idx] - f * (
        v_vx[idx] - v_vx[clamp_index(x - 1, y, z, nx, ny, nz)]
        + v_vy[idx] - v_vy[clamp_index(x, y - 1, z, nx, ny, nz)]
        + v_vz[idx] - v_vz[clamp_index(x, y, z - 1, nx, ny, nz)]);
}`

func newOpenCLFieldSolver() (*openCLFieldSolver, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed and detected by `clinfo`")
	}
	var device *cl.Device
	for _, kind := range []cl.DeviceType{cl.DeviceTypeGPU, cl.DeviceTypeCPU} {
		for _, p := range platforms {
			devices, derr := p.GetDevices(kind)
			if derr != nil && derr != cl.ErrDeviceNotFound {
				continue
			}
			for _, d := range devices {
				if strings.Contains(d.Extensions(), "cl_khr_fp64") {
					device = d
					break
				}
			}
			if device != nil {
				break
			}
		}
		if device != nil {
			break
		}
	}
	if device == nil {
		return nil, errors.New("no OpenCL device with double precision (cl_khr_fp64) found")
	}

	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	s := &openCLFieldSolver{context: context, deviceName: device.Name(), coldStart: true}
	s.queue, err = context.CreateCommandQueue(device, 0)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	s.program, err = context.CreateProgramWithSource([]string{leapfrogKernelSource})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		s.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	if s.velocityKernel, err = s.program.CreateKernel("velocity_step"); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating velocity kernel: %w", err)
	}
	if s.pressureKernel, err = s.program.CreateKernel("pressure_step"); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating pressure kernel: %w", err)
	}
	if s.coeffBuf, err = context.CreateEmptyBuffer(cl.MemReadOnly, int(unsafe.Sizeof(float64(0)))); err != nil {
		s.Close()
		return nil, fmt.Errorf("allocating coefficient buffer: %w", err)
	}
	return s, nil
}

// ensureBuffers (re)allocates the field buffers for size nodes and binds
// them to both kernels.
func (s *openCLFieldSolver) ensureBuffers(nx, ny, nz int) error {
	size := nx * ny * nz
	if size == s.size && s.pressureBufs[fieldP] != nil {
		return nil
	}
	s.releaseFieldBuffers()
	byteSize := size * int(unsafe.Sizeof(float64(0)))
	for i := 0; i < fieldCount; i++ {
		var err error
		if s.pressureBufs[i], err = s.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize); err != nil {
			return fmt.Errorf("allocating pressure grid buffer %d: %w", i, err)
		}
		if s.velocityBufs[i], err = s.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize); err != nil {
			return fmt.Errorf("allocating velocity grid buffer %d: %w", i, err)
		}
		s.scratch[i] = make([]float64, size)
	}
	s.size = size

	p, v := s.pressureBufs, s.velocityBufs
	if err := s.velocityKernel.SetArgs(
		int32(nx), int32(ny), int32(nz),
		s.coeffBuf,
		p[fieldP], p[fieldVx], p[fieldVy], p[fieldVz],
		v[fieldRho],
		v[fieldVx], v[fieldVy], v[fieldVz],
	); err != nil {
		return fmt.Errorf("setting velocity kernel arguments: %w", err)
	}
	if err := s.pressureKernel.SetArgs(
		int32(nx), int32(ny), int32(nz),
		s.coeffBuf,
		v[fieldP], v[fieldVx], v[fieldVy], v[fieldVz],
		p[fieldRho], p[fieldC],
		p[fieldP],
	); err != nil {
		return fmt.Errorf("setting pressure kernel arguments: %w", err)
	}
	return nil
}

func (s *openCLFieldSolver) writeField(buf *cl.MemObject, data []float64) error {
	byteLen := len(data) * int(unsafe.Sizeof(float64(0)))
	_, err := s.queue.EnqueueWriteBuffer(buf, false, 0, byteLen, unsafe.Pointer(&data[0]), nil)
	return err
}

func (s *openCLFieldSolver) readField(buf *cl.MemObject, data []float64) error {
	byteLen := len(data) * int(unsafe.Sizeof(float64(0)))
	_, err := s.queue.EnqueueReadBuffer(buf, true, 0, byteLen, unsafe.Pointer(&data[0]), nil)
	return err
}

// upload copies every field of g into bufs.
func (s *openCLFieldSolver) upload(g *Grid, bufs [fieldCount]*cl.MemObject) error {
	for i := range g.nodes {
		n := &g.nodes[i]
		s.scratch[fieldP][i] = n.Pressure
		s.scratch[fieldVx][i] = n.Vx
		s.scratch[fieldVy][i] = n.Vy
		s.scratch[fieldVz][i] = n.Vz
		s.scratch[fieldRho][i] = n.Density
		s.scratch[fieldC][i] = n.Speed
	}
	for f := 0; f < fieldCount; f++ {
		if err := s.writeField(bufs[f], s.scratch[f]); err != nil {
			return fmt.Errorf("writing field %d: %w", f, err)
		}
	}
	// Scratch is reused by the next upload; wait for the copies to land.
	return s.queue.Finish()
}

// Step runs one velocity and one pressure update on the device and copies
// the updated fields back into the host grids. Grids are uploaded on the
// first step after Init; later host edits are not seen by the device.
func (s *openCLFieldSolver) Step(velocity, pressure *Grid, ratio float64) error {
	nx, ny, nz := pressure.Dims()
	if err := s.ensureBuffers(nx, ny, nz); err != nil {
		return err
	}
	if s.coldStart {
		if err := s.upload(pressure, s.pressureBufs); err != nil {
			return fmt.Errorf("uploading pressure grid: %w", err)
		}
		if err := s.upload(velocity, s.velocityBufs); err != nil {
			return fmt.Errorf("uploading velocity grid: %w", err)
		}
		s.coldStart = false
	}
	coeff := ratio
	if _, err := s.queue.EnqueueWriteBuffer(s.coeffBuf, true, 0, int(unsafe.Sizeof(coeff)), unsafe.Pointer(&coeff), nil); err != nil {
		return fmt.Errorf("writing coefficient: %w", err)
	}
	global := []int{s.size}
	if _, err := s.queue.EnqueueNDRangeKernel(s.velocityKernel, nil, global, nil, nil); err != nil {
		return fmt.Errorf("enqueueing velocity kernel: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.pressureKernel, nil, global, nil, nil); err != nil {
		return fmt.Errorf("enqueueing pressure kernel: %w", err)
	}

	for _, f := range []int{fieldVx, fieldVy, fieldVz} {
		if err := s.readField(s.velocityBufs[f], s.scratch[f]); err != nil {
			return fmt.Errorf("reading velocity field %d: %w", f, err)
		}
	}
	for i := range velocity.nodes {
		n := &velocity.nodes[i]
		n.Vx, n.Vy, n.Vz = s.scratch[fieldVx][i], s.scratch[fieldVy][i], s.scratch[fieldVz][i]
	}
	velocity.timeStep = pressure.timeStep + 1

	if err := s.readField(s.pressureBufs[fieldP], s.scratch[fieldP]); err != nil {
		return fmt.Errorf("reading pressure field: %w", err)
	}
	for i := range pressure.nodes {
		pressure.nodes[i].Pressure = s.scratch[fieldP][i]
	}
	pressure.timeStep = velocity.timeStep + 1
	return nil
}

// reset makes the next Step upload both grids again.
func (s *openCLFieldSolver) reset() {
	s.coldStart = true
}

func (s *openCLFieldSolver) releaseFieldBuffers() {
	for i := 0; i < fieldCount; i++ {
		if s.pressureBufs[i] != nil {
			s.pressureBufs[i].Release()
			s.pressureBufs[i] = nil
		}
		if s.velocityBufs[i] != nil {
			s.velocityBufs[i].Release()
			s.velocityBufs[i] = nil
		}
	}
	s.size = 0
}

func (s *openCLFieldSolver) Close() {
	s.releaseFieldBuffers()
	if s.coeffBuf != nil {
		s.coeffBuf.Release()
		s.coeffBuf = nil
	}
	if s.velocityKernel != nil {
		s.velocityKernel.Release()
		s.velocityKernel = nil
	}
	if s.pressureKernel != nil {
		s.pressureKernel.Release()
		s.pressureKernel = nil
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}

func (s *openCLFieldSolver) DeviceName() string {
	return s.deviceName
}
