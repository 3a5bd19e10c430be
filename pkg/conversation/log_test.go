package conversation_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/medchat/pkg/conversation"
)

var _ = Describe("Log", func() {
	var log *conversation.Log

	BeforeEach(func() {
		log = conversation.NewLog()
	})

	It("chains each message to the one before it", func() {
		first := log.Append(conversation.RoleBot, conversation.Greeting, nil, nil)
		second := log.Append(conversation.RoleUser, "What is hypertension?", nil, nil)

		Expect(first.ParentID).To(BeNil())
		Expect(second.ParentID).NotTo(BeNil())
		Expect(*second.ParentID).To(Equal(first.ID))
		Expect(first.ID).To(HaveLen(64))
		Expect(log.Len()).To(Equal(2))
		Expect(log.Verify()).To(Succeed())
	})

	It("gives identical content at different positions different IDs", func() {
		a := log.Append(conversation.RoleUser, "hello", nil, nil)
		b := log.Append(conversation.RoleUser, "hello", nil, nil)

		Expect(a.ID).NotTo(Equal(b.ID))
	})

	It("keeps sources only when given", func() {
		m := log.Append(conversation.RoleBot, "answer", []string{"a.pdf"}, nil)
		Expect(m.HasSources()).To(BeTrue())

		m = log.Append(conversation.RoleBot, "answer", nil, nil)
		Expect(m.HasSources()).To(BeFalse())
	})

	It("copies the sources it is given", func() {
		sources := []string{"a.pdf"}
		log.Append(conversation.RoleBot, "answer", sources, nil)
		sources[0] = "b.pdf"

		Expect(log.Messages()[0].Sources).To(Equal([]string{"a.pdf"}))
	})

	It("counts appends in its version", func() {
		Expect(log.Version()).To(BeZero())
		log.Append(conversation.RoleUser, "one", nil, nil)
		log.Append(conversation.RoleBot, "two", nil, nil)
		Expect(log.Version()).To(Equal(uint64(2)))
	})

	Describe("VerifyChain", func() {
		var msgs []conversation.Message

		BeforeEach(func() {
			log.Append(conversation.RoleBot, conversation.Greeting, nil, nil)
			log.Append(conversation.RoleUser, "What is hypertension?", nil, nil)
			log.Append(conversation.RoleBot, "High blood pressure.", []string{"guide.pdf"}, nil)
			msgs = log.Messages()
		})

		It("accepts an untouched chain", func() {
			Expect(conversation.VerifyChain(msgs)).To(Succeed())
		})

		It("accepts an empty chain", func() {
			Expect(conversation.VerifyChain(nil)).To(Succeed())
		})

		It("reports edited content", func() {
			msgs[1].Content = "What is diabetes?"

			err := conversation.VerifyChain(msgs)
			Expect(err).To(MatchError(conversation.TamperedError{Index: 1, ID: msgs[1].ID}))
		})

		It("reports edited sources", func() {
			msgs[2].Sources = []string{"other.pdf"}

			var tampered conversation.TamperedError
			Expect(errors.As(conversation.VerifyChain(msgs), &tampered)).To(BeTrue())
			Expect(tampered.Index).To(Equal(2))
		})

		It("reports reordered messages", func() {
			msgs[1], msgs[2] = msgs[2], msgs[1]

			var tampered conversation.TamperedError
			Expect(errors.As(conversation.VerifyChain(msgs), &tampered)).To(BeTrue())
			Expect(tampered.Index).To(Equal(1))
		})

		It("reports a dropped message", func() {
			msgs = append(msgs[:1], msgs[2:]...)

			var tampered conversation.TamperedError
			Expect(errors.As(conversation.VerifyChain(msgs), &tampered)).To(BeTrue())
			Expect(tampered.Index).To(Equal(1))
		})
	})
})

var _ = Describe("LoadImage", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, data, 0o600)).To(Succeed())
		return path
	}

	It("sniffs the MIME type from the content", func() {
		img, err := conversation.LoadImage(write("scan.bin", pngHeader))
		Expect(err).NotTo(HaveOccurred())

		Expect(img.Name).To(Equal("scan.bin"))
		Expect(img.MIMEType).To(Equal("image/png"))
		Expect(img.Size).To(Equal(len(pngHeader)))
		Expect(img.DataURL).To(Equal("data:image/png;base64,iVBORw0KGgoAAAANSUhEUg=="))
	})

	It("falls back to the extension when the content is not recognised", func() {
		img, err := conversation.LoadImage(write("scan.svg", []byte("<svg xmlns=\"http://www.w3.org/2000/svg\"/>")))
		Expect(err).NotTo(HaveOccurred())
		Expect(img.MIMEType).To(Equal("image/svg+xml"))
	})

	It("does not validate the content", func() {
		img, err := conversation.LoadImage(write("notes", []byte{0x00, 0x01, 0x02}))
		Expect(err).NotTo(HaveOccurred())
		Expect(img.MIMEType).To(Equal("application/octet-stream"))
	})

	It("returns the read error", func() {
		_, err := conversation.LoadImage(filepath.Join(dir, "missing.png"))
		Expect(err).To(MatchError(os.ErrNotExist))
	})
})
