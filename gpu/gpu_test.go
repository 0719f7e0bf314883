package gpu

import (
	"testing"

	vk "github.com/goki/vulkan"

	"github.com/FrozenDroid/frozengame/model"
)

func TestAllOfAinB(t *testing.T) {
	cases := []struct {
		a, b []string
		want bool
	}{
		{[]string{}, []string{"x"}, true},
		{[]string{"a"}, []string{"a", "b"}, true},
		{[]string{"a", "b"}, []string{"b", "a"}, true},
		{[]string{"a", "c"}, []string{"a", "b"}, false},
		{[]string{"a"}, []string{}, false},
	}
	for _, c := range cases {
		if got := allOfAinB(c.a, c.b); got != c.want {
			t.Errorf("allOfAinB(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestTerminatedStr(t *testing.T) {
	if got := terminatedStr("abc"); got != "abc\x00" {
		t.Errorf("terminatedStr(abc) = %q", got)
	}
	if got := terminatedStr("abc\x00"); got != "abc\x00" {
		t.Errorf("terminatedStr(abc\\x00) = %q", got)
	}
}

func TestTerminatedStrsDoesNotMutateInput(t *testing.T) {
	in := []string{"VK_KHR_swapchain"}
	out := terminatedStrs(in)
	if in[0] != "VK_KHR_swapchain" {
		t.Errorf("input mutated to %q", in[0])
	}
	if out[0] != "VK_KHR_swapchain\x00" {
		t.Errorf("output = %q", out[0])
	}
}

func TestAsUint32Slice(t *testing.T) {
	// SPIR-V magic number in little endian byte order.
	data := []byte{0x03, 0x02, 0x23, 0x07}
	words := asUint32Slice(data)
	if len(words) != 1 || words[0] != 0x07230203 {
		t.Errorf("asUint32Slice = %#v", words)
	}
}

func TestVkFormatOf(t *testing.T) {
	cases := []struct {
		in   model.Format
		want vk.Format
	}{
		{model.FormatFloat32x2, vk.FormatR32g32Sfloat},
		{model.FormatFloat32x3, vk.FormatR32g32b32Sfloat},
		{model.FormatFloat32x4, vk.FormatR32g32b32a32Sfloat},
	}
	for _, c := range cases {
		got, err := vkFormatOf(c.in)
		if err != nil || got != c.want {
			t.Errorf("vkFormatOf(%v) = %v, %v", c.in, got, err)
		}
	}
	if _, err := vkFormatOf(model.Format(99)); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestVertexInputDescriptions(t *testing.T) {
	layout := model.Vertex{}.Layout()
	binding, attrs, err := vertexInputDescriptions(layout)
	if err != nil {
		t.Fatalf("vertexInputDescriptions: %v", err)
	}
	if binding.Stride != layout.Stride || binding.Binding != 0 {
		t.Errorf("binding = %+v", binding)
	}
	if len(attrs) != 2 {
		t.Fatalf("got %d attributes, want 2", len(attrs))
	}
	if attrs[0].Location != 0 || attrs[0].Offset != 0 || attrs[0].Format != vk.FormatR32g32b32Sfloat {
		t.Errorf("position attribute = %+v", attrs[0])
	}
	if attrs[1].Location != 1 || attrs[1].Offset != 12 {
		t.Errorf("normal attribute = %+v", attrs[1])
	}
}

func TestUsageBits(t *testing.T) {
	if bits, err := usageBits(model.UsageVertex); err != nil || bits != vk.BufferUsageVertexBufferBit {
		t.Errorf("usageBits(vertex) = %v, %v", bits, err)
	}
	if bits, err := usageBits(model.UsageIndex); err != nil || bits != vk.BufferUsageIndexBufferBit {
		t.Errorf("usageBits(index) = %v, %v", bits, err)
	}
	if _, err := usageBits(model.Usage(42)); err == nil {
		t.Error("expected error for unknown usage")
	}
}
