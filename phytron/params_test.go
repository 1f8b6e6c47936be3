package phytron

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
)

func TestParamCommands(t *testing.T) {
	test.That(t, ParamMovementType.readCmd(), test.ShouldEqual, "P01R")
	test.That(t, ParamPosition.readCmd(), test.ShouldEqual, "P20R")
	test.That(t, ParamPosition.writeCmd("12.5000"), test.ShouldEqual, "P20S12.5000")
	test.That(t, ParamRunCurrent.writeCmd("25"), test.ShouldEqual, "P41S25")
}

func TestParamGroups(t *testing.T) {
	test.That(t, GroupOf(ParamVelocity), test.ShouldEqual, GroupMotion)
	test.That(t, GroupOf(ParamPosition), test.ShouldEqual, GroupPosition)
	test.That(t, GroupOf(ParamBacklash), test.ShouldEqual, GroupPosition)
	test.That(t, GroupOf(Param(33)), test.ShouldEqual, GroupOther)

	test.That(t, paramsInGroup(GroupMotion), test.ShouldResemble,
		[]Param{ParamHomingVelocity, ParamVelocity, ParamAcceleration})
	test.That(t, paramsInGroup(GroupCurrent), test.ShouldResemble,
		[]Param{ParamHoldCurrent, ParamRunCurrent})
}

func TestParamCacheFreshness(t *testing.T) {
	mock := clock.NewMock()
	c := newParamCache(mock, 200*time.Millisecond)

	_, ok := c.fresh(ParamPosition)
	test.That(t, ok, test.ShouldBeFalse)

	c.put(ParamPosition, "42")
	raw, ok := c.fresh(ParamPosition)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, raw, test.ShouldEqual, "42")

	mock.Add(201 * time.Millisecond)
	_, ok = c.fresh(ParamPosition)
	test.That(t, ok, test.ShouldBeFalse)

	// peek ignores age.
	raw, ok = c.peek(ParamPosition)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, raw, test.ShouldEqual, "42")
}
