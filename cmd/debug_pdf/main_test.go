package main

import (
	"image/color"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/barcodeplacer/internal/raster"
)

var _ = Describe("pageHash", func() {
	It("should hash equal pages equally", func() {
		a := raster.NewBuffer(1, 8, 8)
		b := raster.NewBuffer(1, 8, 8)
		a.Fill(color.White)
		b.Fill(color.White)

		hashA, err := pageHash(a)
		Expect(err).NotTo(HaveOccurred())
		hashB, err := pageHash(b)
		Expect(err).NotTo(HaveOccurred())
		Expect(hashA).NotTo(BeEmpty())
		Expect(hashA).To(Equal(hashB))
	})

	It("should fail on a released page instead of hashing nothing", func() {
		page := raster.NewBuffer(1, 8, 8)
		page.Release()

		hash, err := pageHash(page)
		Expect(err).To(HaveOccurred())
		Expect(hash).To(BeEmpty())

		_, err = pageHash(nil)
		Expect(err).To(HaveOccurred())
	})
})
