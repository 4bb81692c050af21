package physics

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springsim/internal/dynamo"
)

var _ = Describe("Grab, Pull and Release", func() {
	var (
		s      *Simulation
		anchor *Ball
		first  *Ball
		second *Ball
	)

	BeforeEach(func() {
		var err error
		s, err = New(Params{GrabDistanceLimit: 0.1})
		Expect(err).NotTo(HaveOccurred())

		anchor, err = s.AddBall(0.01, 1, dynamo.V(0, 0))
		Expect(err).NotTo(HaveOccurred())
		first, err = s.AddBall(0.01, 0, dynamo.V(0.04, -0.04))
		Expect(err).NotTo(HaveOccurred())
		second, err = s.AddBall(0.01, 0, dynamo.V(0.08, -0.08))
		Expect(err).NotTo(HaveOccurred())

		_, err = s.AddSpring(anchor, first, 0.04, 500)
		Expect(err).NotTo(HaveOccurred())
		_, err = s.AddSpring(first, second, 0.04, 500)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("when nothing is held", func() {
		It("grabs the nearest ball and snaps it to the cursor", func() {
			first.Vel = dynamo.V(1, 1)
			s.Grab(0.05, -0.03)

			held, ok := s.Grabbed()
			Expect(ok).To(BeTrue())
			Expect(held).To(BeIdenticalTo(first))
			Expect(first.Anchor).To(Equal(1))
			Expect(first.Pos).To(Equal(dynamo.V(0.05, -0.03)))
			Expect(first.Vel.IsZero()).To(BeTrue())
		})

		It("ignores a grab with no ball within the limit", func() {
			s.Grab(5, 5)

			_, ok := s.Grabbed()
			Expect(ok).To(BeFalse())
			Expect(anchor.Anchor).To(Equal(1))
			Expect(first.Anchor).To(Equal(0))
			Expect(second.Anchor).To(Equal(0))
		})

		It("honours the grab distance limit", func() {
			s.Grab(0.08, -0.19)
			_, ok := s.Grabbed()
			Expect(ok).To(BeFalse())

			s.Grab(0.08, -0.17)
			held, ok := s.Grabbed()
			Expect(ok).To(BeTrue())
			Expect(held).To(BeIdenticalTo(second))
		})

		It("breaks ties in favour of the earliest ball", func() {
			tie, err := New(Params{GrabDistanceLimit: 2})
			Expect(err).NotTo(HaveOccurred())
			left, _ := tie.AddBall(1, 0, dynamo.V(-1, 0))
			tie.AddBall(1, 0, dynamo.V(1, 0))

			tie.Grab(0, 0)
			held, ok := tie.Grabbed()
			Expect(ok).To(BeTrue())
			Expect(held).To(BeIdenticalTo(left))
		})

		It("treats Pull and Release as no-ops", func() {
			before := first.Pos
			s.Pull(1, 1)
			s.Release()

			Expect(first.Pos).To(Equal(before))
			Expect(anchor.Anchor).To(Equal(1))
			Expect(first.Anchor).To(Equal(0))
		})
	})

	Context("when a ball is held", func() {
		BeforeEach(func() {
			s.Grab(0.08, -0.08)
		})

		It("ignores further grabs", func() {
			s.Grab(0.04, -0.04)
			s.Grab(0, 0)

			held, _ := s.Grabbed()
			Expect(held).To(BeIdenticalTo(second))
			Expect(first.Anchor).To(Equal(0))
			Expect(anchor.Anchor).To(Equal(1))

			grabbed := 0
			for _, b := range s.Balls() {
				if b.Anchor > 0 && b != anchor {
					grabbed++
				}
			}
			Expect(grabbed).To(Equal(1))
		})

		It("moves the ball on Pull and zeroes its velocity", func() {
			second.Vel = dynamo.V(3, -2)
			s.Pull(0.3, 0.2)

			Expect(second.Pos).To(Equal(dynamo.V(0.3, 0.2)))
			Expect(second.Vel.IsZero()).To(BeTrue())
		})

		It("keeps the held ball out of integration", func() {
			s.Pull(0.2, -0.2)
			for i := 0; i < 100; i++ {
				s.Update(1e-4)
			}
			Expect(second.Pos).To(Equal(dynamo.V(0.2, -0.2)))
			Expect(first.Pos).NotTo(Equal(dynamo.V(0.04, -0.04)))
		})

		It("restores mobility on Release", func() {
			s.Release()

			_, ok := s.Grabbed()
			Expect(ok).To(BeFalse())
			Expect(second.Anchor).To(Equal(0))
			Expect(second.Anchored()).To(BeFalse())
		})

		It("lets the released ball move again", func() {
			s.Pull(0.2, -0.2)
			s.Release()
			s.Update(1e-4)
			Expect(second.Pos).NotTo(Equal(dynamo.V(0.2, -0.2)))
		})
	})

	Context("when the permanent anchor is grabbed", func() {
		It("stays anchored after release", func() {
			s.Grab(0.01, 0.01)
			Expect(anchor.Anchor).To(Equal(2))
			Expect(anchor.Pos).To(Equal(dynamo.V(0.01, 0.01)))

			s.Release()
			Expect(anchor.Anchor).To(Equal(1))
			Expect(anchor.Anchored()).To(BeTrue())
		})
	})

	It("supports repeated grab and release cycles", func() {
		for i := 0; i < 5; i++ {
			s.Grab(0.04, -0.04)
			s.Release()
		}
		Expect(first.Anchor).To(Equal(0))
		_, ok := s.Grabbed()
		Expect(ok).To(BeFalse())
	})
})
