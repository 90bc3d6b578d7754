package jsonlib_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/timbre/src/shared/lib/jsonlib"
	. "github.com/veedubyou/timbre/src/shared/testing"
)

type runFields struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Artifacts map[string]any `json:"artifacts"`
}

func newFlattenRun(r runFields, extra map[string]any) jsonlib.Flatten[runFields] {
	return jsonlib.Flatten[runFields]{
		Defined: r,
		Extra:   extra,
	}
}

var _ = Describe("Flatten", func() {
	var (
		flatRun     jsonlib.Flatten[runFields]
		mapContents map[string]any
	)

	ItTransformsToMap := func() {
		It("transforms to map correctly", Offset(1), func() {
			Expect(ExpectSuccess(flatRun.ToMap())).To(Equal(mapContents))
		})
	}

	ItMarshals := func() {
		It("marshals correctly", Offset(1), func() {
			flattenJSON := ExpectSuccess(flatRun.MarshalJSON())
			expectedJSON := ExpectSuccess(json.Marshal(mapContents))
			Expect(flattenJSON).To(MatchJSON(expectedJSON))
		})
	}

	ItRoundTrips := func() {
		It("transforms from map correctly", Offset(1), func() {
			actual := jsonlib.Flatten[runFields]{}
			Expect(actual.FromMap(mapContents)).To(Succeed())
			Expect(actual).To(Equal(flatRun))
		})

		It("unmarshals correctly", Offset(1), func() {
			jsonContents := ExpectSuccess(json.Marshal(mapContents))

			actual := jsonlib.Flatten[runFields]{}
			Expect(actual.UnmarshalJSON(jsonContents)).To(Succeed())
			Expect(actual).To(Equal(flatRun))
		})
	}

	Describe("Empty run", func() {
		BeforeEach(func() {
			flatRun = newFlattenRun(runFields{}, map[string]any{})
			mapContents = map[string]any{
				"id":        "",
				"status":    "",
				"artifacts": nil,
			}
		})

		ItTransformsToMap()
		ItMarshals()
		ItRoundTrips()
	})

	Describe("Defined and extra fields together", func() {
		BeforeEach(func() {
			flatRun = newFlattenRun(runFields{
				ID:     "run-1",
				Status: "processing",
				Artifacts: map[string]any{
					"all_mfccs.msgpack": "https://storage/run-1/mfcc/all_mfccs.msgpack",
				},
			}, map[string]any{
				"requested_by": "lab-laptop",
				"notes": map[string]any{
					"tags": []any{"chorus", float64(2)},
				},
			})

			mapContents = map[string]any{
				"id":     "run-1",
				"status": "processing",
				"artifacts": map[string]any{
					"all_mfccs.msgpack": "https://storage/run-1/mfcc/all_mfccs.msgpack",
				},
				"requested_by": "lab-laptop",
				"notes": map[string]any{
					"tags": []any{"chorus", float64(2)},
				},
			}
		})

		ItTransformsToMap()
		ItMarshals()
		ItRoundTrips()
	})

	Describe("An extra field shadowing a defined field", func() {
		BeforeEach(func() {
			flatRun = newFlattenRun(runFields{
				ID:     "run-2",
				Status: "completed",
			}, map[string]any{
				"status": "stale",
			})

			mapContents = map[string]any{
				"id":        "run-2",
				"status":    "completed",
				"artifacts": nil,
			}
		})

		ItMarshals()
	})
})
