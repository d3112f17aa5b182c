package device

import (
	"testing"

	"github.com/x2w-soda/Ludens-sub000/driver"
	"github.com/x2w-soda/Ludens-sub000/rshader"
)

const testFragmentWGSL = `
@fragment
fn main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

func TestNewShaderFuncCompilesAndReflects(t *testing.T) {
	d := newTestDevice()
	fn, err := d.NewShaderFunc(rshader.NagaCompiler{}, testFragmentWGSL, rshader.WGSL, driver.SFragment, "")
	if err != nil {
		t.Fatalf("NewShaderFunc: %v", err)
	}
	if fn.Code == nil {
		t.Fatal("NewShaderFunc: returned ShaderFunc has no Code")
	}
	if fn.Name != "main" {
		t.Fatalf("NewShaderFunc: want entry point name %q, got %q", "main", fn.Name)
	}
}

func TestNewShaderFuncRejectsGLSL(t *testing.T) {
	d := newTestDevice()
	_, err := d.NewShaderFunc(rshader.NagaCompiler{}, testFragmentWGSL, rshader.GLSL, driver.SFragment, "")
	if err == nil {
		t.Fatal("NewShaderFunc: want error compiling GLSL through NagaCompiler, got nil")
	}
}

func TestNewPrecompiledShaderFuncReflectsSPIRV(t *testing.T) {
	d := newTestDevice()
	spirv, err := rshader.NagaCompiler{}.Compile(testFragmentWGSL, rshader.WGSL, driver.SFragment)
	if err != nil {
		t.Fatalf("NagaCompiler.Compile: %v", err)
	}
	fn, err := d.NewPrecompiledShaderFunc(spirv, "override")
	if err != nil {
		t.Fatalf("NewPrecompiledShaderFunc: %v", err)
	}
	if fn.Name != "override" {
		t.Fatalf("NewPrecompiledShaderFunc: want name %q, got %q", "override", fn.Name)
	}
}
