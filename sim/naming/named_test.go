package naming

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Labeler", func() {
	var l *Labeler

	BeforeEach(func() {
		l = NewLabeler()
	})

	It("should count each kind separately", func() {
		Expect(l.Next("Resource")).To(Equal("Resource.0"))
		Expect(l.Next("Resource")).To(Equal("Resource.1"))
		Expect(l.Next("Store")).To(Equal("Store.0"))
		Expect(l.Next("Resource")).To(Equal("Resource.2"))

		Expect(l.Count("Resource")).To(Equal(3))
		Expect(l.Count("Queue")).To(Equal(0))
	})

	It("should restart after reset", func() {
		l.Next("Event")
		l.Next("Event")

		l.Reset()

		Expect(l.Next("Event")).To(Equal("Event.0"))
	})

	It("should name things", func() {
		n := MakeNamedBase("Container.3")

		Expect(n.Name()).To(Equal("Container.3"))
		Expect(n.String()).To(Equal("Container.3"))
	})
})
