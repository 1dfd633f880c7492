package detect_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"github.com/onsi/gomega"
	"pgregory.net/rapid"

	detect "github.com/toejough/deepmock/deepgen/run/3_detect"
)

// FuzzSplitQualified tests SplitQualified with coverage-guided fuzzing.
// Uses rapid.MakeFuzz for smart input generation.
func FuzzSplitQualified(f *testing.F) {
	f.Fuzz(rapid.MakeFuzz(func(t *rapid.T) {
		expect := gomega.NewWithT(t)

		input := rapid.OneOf(
			rapid.Just(""),
			rapid.StringMatching(`[A-Z][a-zA-Z]{0,10}`),
			rapid.StringMatching(`[a-z]{1,10}\.[A-Z][a-zA-Z]{0,10}`),
			rapid.String(),
		).Draw(t, "input")

		pkg, name := detect.SplitQualified(input)

		// Property: splitting loses nothing
		if pkg == "" {
			expect.Expect(name).To(gomega.Equal(input))
		} else {
			expect.Expect(pkg + "." + name).To(gomega.Equal(input))
			expect.Expect(pkg).NotTo(gomega.ContainSubstring("."))
		}

		// Property: a dot always yields a package part unless it leads
		if strings.Contains(input, ".") && !strings.HasPrefix(input, ".") {
			expect.Expect(pkg).NotTo(gomega.BeEmpty())
		}
	}))
}

// FuzzCollect tests Collect on generated chains of nested interfaces.
// Property: every interface reachable through accessors is collected exactly once.
func FuzzCollect(f *testing.F) {
	f.Fuzz(rapid.MakeFuzz(func(t *rapid.T) {
		expect := gomega.NewWithT(t)

		depth := rapid.IntRange(1, 6).Draw(t, "depth")
		loop := rapid.Bool().Draw(t, "loop")

		var src strings.Builder

		src.WriteString("package app\n")

		for level := range depth {
			fmt.Fprintf(&src, "type Level%d interface {\n\tValue(n int) string\n", level)

			if level+1 < depth {
				fmt.Fprintf(&src, "\tNext() Level%d\n", level+1)
			} else if loop {
				src.WriteString("\tNext() Level0\n")
			}

			src.WriteString("}\n")
		}

		file, err := decorator.Parse(src.String())
		expect.Expect(err).NotTo(gomega.HaveOccurred())

		shape, err := detect.Collect([]*dst.File{file}, "Level0", "app")
		expect.Expect(err).NotTo(gomega.HaveOccurred())
		expect.Expect(shape.Interfaces).To(gomega.HaveLen(depth))
	}))
}
