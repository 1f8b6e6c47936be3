package phytron

import (
	"testing"

	"go.viam.com/test"
)

// rawFromFlags packs the given flag indices into the decimal status value a
// nibble-encoding controller would transmit.
func rawFromFlags(indices ...int) int64 {
	var raw int64
	for _, idx := range indices {
		digit := idx / 4
		bit := idx % 4
		pow := int64(1)
		for i := 0; i < digit; i++ {
			pow *= 16
		}
		raw += int64(1<<bit) * pow
	}
	return raw
}

func TestDecodeNibbleStatus(t *testing.T) {
	t.Run("zero decodes to all clear", func(t *testing.T) {
		w := decodeNibbleStatus(0, 7)
		test.That(t, w.Width(), test.ShouldEqual, 28)
		for i := 0; i < w.Width(); i++ {
			set, err := w.Flag(i)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, set, test.ShouldBeFalse)
		}
	})

	t.Run("all ones decodes to all set", func(t *testing.T) {
		w := decodeNibbleStatus(0xFFFFFFF, 7)
		test.That(t, w.Width(), test.ShouldEqual, 28)
		for i := 0; i < w.Width(); i++ {
			set, err := w.Flag(i)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, set, test.ShouldBeTrue)
		}
	})

	t.Run("0x208 sets flags 3 and 9", func(t *testing.T) {
		w := decodeNibbleStatus(0x208, 7)
		for i := 0; i < w.Width(); i++ {
			set, err := w.Flag(i)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, set, test.ShouldEqual, i == 3 || i == 9)
		}
	})

	t.Run("nibble-major bit-minor ordering", func(t *testing.T) {
		// 0x31 = digits 1,3 LSD first: bit 0 of nibble 0, bits 0+1 of nibble 1.
		w := decodeNibbleStatus(0x31, 2)
		test.That(t, w.bits, test.ShouldResemble, []bool{
			true, false, false, false,
			true, true, false, false,
		})
	})

	t.Run("round trip over one digit", func(t *testing.T) {
		for v := int64(0); v < 16; v++ {
			w := decodeNibbleStatus(v, 1)
			var back int64
			for i, set := range w.bits {
				if set {
					back |= 1 << i
				}
			}
			test.That(t, back, test.ShouldEqual, v)
		}
	})
}

func TestDecodeWindowStatus(t *testing.T) {
	w := decodeWindowStatus(0b10100101, []uint{0, 1, 2, 3, 4, 5, 6, 7})
	test.That(t, w.bits, test.ShouldResemble, []bool{
		true, false, true, false,
		false, true, false, true,
	})

	// The two strategies are not equivalent: the same raw value decodes
	// differently under nibble expansion of a different width.
	n := decodeNibbleStatus(0b10100101, 7)
	test.That(t, n.Width(), test.ShouldNotEqual, w.Width())
}

func TestStatusFlagOutOfRange(t *testing.T) {
	w := decodeNibbleStatus(0, 7)
	_, err := w.Flag(28)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "out of range")

	_, err = w.Flag(-1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestStatusSwap(t *testing.T) {
	w := decodeNibbleStatus(rawFromFlags(4, 8), 7)
	swapped := w.swapped(map[int]int{4: 5, 5: 4, 7: 8, 8: 7})

	for i, want := range map[int]bool{4: false, 5: true, 7: true, 8: false} {
		set, err := swapped.Flag(i)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, set, test.ShouldEqual, want)
	}

	// Swapping twice restores the original word.
	restored := swapped.swapped(map[int]int{4: 5, 5: 4, 7: 8, 8: 7})
	test.That(t, restored.bits, test.ShouldResemble, w.bits)
}

func TestStatusText(t *testing.T) {
	w := decodeNibbleStatus(rawFromFlags(3, 8), 7)
	text := statusText(w, phyMotionFlagDescriptions)
	test.That(t, text, test.ShouldEqual, "Power stage is activated\nMotor stands still")

	// Flags beyond the description table are silently unlabeled.
	w = decodeNibbleStatus(rawFromFlags(19), 7)
	test.That(t, statusText(w, phyMotionFlagDescriptions), test.ShouldEqual, "")
}
