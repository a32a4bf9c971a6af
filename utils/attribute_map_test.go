package utils

import (
	"encoding/json"
	"testing"

	"go.viam.com/test"
)

func TestAttributeMap(t *testing.T) {
	var am AttributeMap
	err := json.Unmarshal([]byte(`{"max_vel": 2.5, "count": 3, "name": "axis"}`), &am)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, am.Has("max_vel"), test.ShouldBeTrue)
	test.That(t, am.Has("max_acc"), test.ShouldBeFalse)

	test.That(t, am.Float64("max_vel", 0), test.ShouldEqual, 2.5)
	test.That(t, am.Float64("count", 0), test.ShouldEqual, 3.0)
	test.That(t, am.Float64("missing", 1.5), test.ShouldEqual, 1.5)
	test.That(t, am.String("name"), test.ShouldEqual, "axis")
	test.That(t, am.String("missing"), test.ShouldEqual, "")

	test.That(t, func() { am.Float64("name", 0) }, test.ShouldPanic)
	test.That(t, func() { am.String("count") }, test.ShouldPanic)
}

func TestAttributeMapIntWidening(t *testing.T) {
	am := AttributeMap{"max_acc": 4}
	test.That(t, am.Float64("max_acc", 0), test.ShouldEqual, 4.0)
}
