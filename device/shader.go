package device

import (
	"github.com/x2w-soda/Ludens-sub000/driver"
	"github.com/x2w-soda/Ludens-sub000/rshader"
)

// NewShaderFunc compiles src with c and uploads the resulting SPIR-V
// to the device, returning a driver.ShaderFunc ready for use in a
// GraphTemplate or a compute driver.CompState. The entry point name is
// taken from the module's reflection data unless name overrides it.
func (d *Device) NewShaderFunc(c rshader.Compiler, src string, lang rshader.Language, stage driver.Stage, name string) (driver.ShaderFunc, error) {
	mod, err := rshader.CompileAndReflect(c, src, lang, stage)
	if err != nil {
		return driver.ShaderFunc{}, err
	}
	return d.newShaderFuncFromModule(mod, name)
}

// NewPrecompiledShaderFunc reflects spirv, bytecode produced outside
// this module (e.g. a GLSL-to-SPIR-V toolchain run offline), and
// uploads it to the device as a driver.ShaderFunc.
func (d *Device) NewPrecompiledShaderFunc(spirv []byte, name string) (driver.ShaderFunc, error) {
	mod, err := rshader.Precompiled(spirv)
	if err != nil {
		return driver.ShaderFunc{}, err
	}
	return d.newShaderFuncFromModule(mod, name)
}

func (d *Device) newShaderFuncFromModule(mod *rshader.Module, name string) (driver.ShaderFunc, error) {
	code, err := d.gpu.NewShaderCode(mod.SPIRV)
	if err != nil {
		return driver.ShaderFunc{}, err
	}
	if name == "" {
		name = mod.Reflect.EntryPoint
	}
	return driver.ShaderFunc{Code: code, Name: name}, nil
}
