package timing

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Instant", func() {
	It("should add numeric durations", func() {
		t, err := At(1.5).Add(Span(2.25))

		Expect(err).ToNot(HaveOccurred())
		Expect(t.Domain()).To(Equal(Numeric))
		Expect(t.Float()).To(Equal(3.75))
	})

	It("should add calendar durations", func() {
		base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

		t, err := AtTime(base).Add(SpanOf(10 * time.Minute))

		Expect(err).ToNot(HaveOccurred())
		Expect(t.Domain()).To(Equal(Calendar))
		Expect(t.Time()).To(Equal(base.Add(10 * time.Minute)))
	})

	It("should refuse to mix domains", func() {
		_, err := At(0).Add(SpanOf(time.Second))
		Expect(errors.Is(err, ErrDomainMismatch)).To(BeTrue())

		_, err = AtTime(time.Now()).Add(Span(1))
		Expect(errors.Is(err, ErrDomainMismatch)).To(BeTrue())
	})

	It("should subtract instants", func() {
		d, err := At(10).Sub(At(4))

		Expect(err).ToNot(HaveOccurred())
		Expect(d.String()).To(Equal("6"))
		Expect(d.IsNegative()).To(BeFalse())

		_, err = At(10).Sub(AtTime(time.Now()))
		Expect(errors.Is(err, ErrDomainMismatch)).To(BeTrue())
	})

	It("should order instants", func() {
		Expect(At(1).Before(At(2))).To(BeTrue())
		Expect(At(2).Before(At(1))).To(BeFalse())
		Expect(At(2).Equal(At(2))).To(BeTrue())
		Expect(At(3).Compare(At(2))).To(Equal(1))

		base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
		Expect(AtTime(base).Before(AtTime(base.Add(time.Nanosecond)))).
			To(BeTrue())
		Expect(AtTime(base).Equal(AtTime(base.In(time.Local)))).To(BeTrue())
	})

	It("should panic when comparing across domains", func() {
		Expect(func() { At(1).Before(AtTime(time.Now())) }).To(Panic())
	})

	It("should treat the zero value as numeric zero", func() {
		var t Instant

		Expect(t.Domain()).To(Equal(Numeric))
		Expect(t.Equal(At(0))).To(BeTrue())
		Expect(t.String()).To(Equal("0"))
	})
})

var _ = Describe("Duration", func() {
	It("should tell negative spans", func() {
		Expect(Span(-1).IsNegative()).To(BeTrue())
		Expect(SpanOf(-time.Second).IsNegative()).To(BeTrue())
		Expect(SpanOf(time.Second).IsNegative()).To(BeFalse())
	})

	It("should print", func() {
		Expect(Span(2.5).String()).To(Equal("2.5"))
		Expect(SpanOf(90 * time.Second).String()).To(Equal("1m30s"))
		Expect(Calendar.String()).To(Equal("calendar"))
	})
})
