package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func memoryWithHeaps(heaps ...vk.MemoryHeap) vk.PhysicalDeviceMemoryProperties {
	memory := vk.PhysicalDeviceMemoryProperties{
		MemoryHeapCount: uint32(len(heaps)),
	}
	copy(memory.MemoryHeaps[:], heaps)
	return memory
}

func TestDeviceScore(t *testing.T) {
	discrete := vk.PhysicalDeviceProperties{DeviceType: vk.PhysicalDeviceTypeDiscreteGpu}
	integrated := vk.PhysicalDeviceProperties{DeviceType: vk.PhysicalDeviceTypeIntegratedGpu}

	smallLocal := memoryWithHeaps(
		vk.MemoryHeap{Size: 2 << 30, Flags: vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit)},
	)
	largeLocal := memoryWithHeaps(
		vk.MemoryHeap{Size: 16 << 30, Flags: vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit)},
	)
	// A big heap without the device-local flag must not help the score.
	hostOnly := memoryWithHeaps(
		vk.MemoryHeap{Size: 64 << 30},
		vk.MemoryHeap{Size: 1 << 30, Flags: vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit)},
	)

	t.Run("discrete beats integrated regardless of memory", func(t *testing.T) {
		discreteScore := deviceScore(&discrete, &smallLocal)
		integratedScore := deviceScore(&integrated, &largeLocal)
		if discreteScore <= integratedScore {
			t.Errorf("discrete score %d <= integrated score %d", discreteScore, integratedScore)
		}
	})

	t.Run("same type breaks ties on device-local heap size", func(t *testing.T) {
		small := deviceScore(&discrete, &smallLocal)
		large := deviceScore(&discrete, &largeLocal)
		if large <= small {
			t.Errorf("16 GiB score %d <= 2 GiB score %d", large, small)
		}
	})

	t.Run("host-visible heaps are ignored", func(t *testing.T) {
		onlyLocal := memoryWithHeaps(
			vk.MemoryHeap{Size: 1 << 30, Flags: vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit)},
		)
		got := deviceScore(&integrated, &hostOnly)
		want := deviceScore(&integrated, &onlyLocal)
		if got != want {
			t.Errorf("score with extra host heap = %d, want %d", got, want)
		}
	})
}
