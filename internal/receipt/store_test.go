package receipt

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.etcd.io/bbolt"
)

var _ = Describe("Store", func() {
	var (
		medium *mockMedium
		store  *Store
	)

	// valid builds a receipt that passes the record invariants
	valid := func(id, vendor string, amount float64) Receipt {
		return Receipt{ID: id, Vendor: vendor, Amount: amount, Currency: "USD", Category: "Other", Date: "2024-01-01"}
	}

	BeforeEach(func() {
		medium = &mockMedium{}
		store = NewStore(medium)
	})

	Describe("Insert", func() {
		It("should keep receipts newest first", func() {
			Expect(store.Insert(Receipt{ID: "a"})).To(Succeed())
			Expect(store.Insert(Receipt{ID: "b"})).To(Succeed())
			Expect(store.Insert(Receipt{ID: "c"})).To(Succeed())

			ids := make([]string, 0)
			for _, r := range store.List() {
				ids = append(ids, r.ID)
			}
			Expect(ids).To(Equal([]string{"c", "b", "a"}))
		})

		It("should write the collection through to the medium", func() {
			Expect(store.Insert(Receipt{ID: "a", Vendor: "Cafe", Amount: 12.5})).To(Succeed())

			var saved []Receipt
			Expect(json.Unmarshal(medium.data, &saved)).To(Succeed())
			Expect(saved).To(HaveLen(1))
			Expect(saved[0].Vendor).To(Equal("Cafe"))
		})

		It("panics on a duplicate id", func() {
			Expect(store.Insert(Receipt{ID: "a"})).To(Succeed())
			Expect(func() { _ = store.Insert(Receipt{ID: "a"}) }).To(Panic())
		})

		When("the medium fails", func() {
			BeforeEach(func() {
				medium.writeErr = errors.New("disk full")
			})

			It("returns ErrPersistenceUnavailable", func() {
				Expect(store.Insert(Receipt{ID: "a"})).To(MatchError(ErrPersistenceUnavailable))
			})

			It("should keep the receipt in memory", func() {
				_ = store.Insert(Receipt{ID: "a"})
				_, ok := store.Get("a")
				Expect(ok).To(BeTrue())
			})
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			Expect(store.Insert(Receipt{ID: "a"})).To(Succeed())
			Expect(store.Insert(Receipt{ID: "b"})).To(Succeed())
			medium.writes = 0
		})

		It("should remove the receipt and keep the order", func() {
			Expect(store.Insert(Receipt{ID: "c"})).To(Succeed())
			Expect(store.Delete("b")).To(Succeed())

			list := store.List()
			Expect(list).To(HaveLen(2))
			Expect(list[0].ID).To(Equal("c"))
			Expect(list[1].ID).To(Equal("a"))
		})

		It("should ignore unknown ids", func() {
			Expect(store.Delete("missing")).To(Succeed())
			Expect(store.List()).To(HaveLen(2))
			Expect(medium.writes).To(BeZero())
		})

		It("should be idempotent", func() {
			Expect(store.Delete("a")).To(Succeed())
			Expect(store.Delete("a")).To(Succeed())
			Expect(store.List()).To(HaveLen(1))
		})

		It("should allow the id to be reused", func() {
			Expect(store.Delete("a")).To(Succeed())
			Expect(store.Insert(Receipt{ID: "a"})).To(Succeed())
		})
	})

	Describe("List", func() {
		It("returns an empty, non-nil slice for an empty store", func() {
			list := store.List()
			Expect(list).NotTo(BeNil())
			Expect(list).To(BeEmpty())
		})

		It("returns a snapshot", func() {
			Expect(store.Insert(Receipt{ID: "a", Vendor: "Cafe"})).To(Succeed())
			list := store.List()
			list[0].Vendor = "changed"

			Expect(store.Insert(Receipt{ID: "b"})).To(Succeed())
			Expect(list).To(HaveLen(1))

			r, _ := store.Get("a")
			Expect(r.Vendor).To(Equal("Cafe"))
		})
	})

	Describe("Load", func() {
		var err error

		JustBeforeEach(func() {
			err = store.Load()
		})

		When("nothing was saved", func() {
			It("should start empty without an error", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(store.List()).To(BeEmpty())
			})
		})

		When("receipts were saved", func() {
			BeforeEach(func() {
				medium.data = []byte(`[
					{"id":"b","vendor":"Shell","amount":40,"tax":0,"currency":"USD","category":"Travel","date":"2024-01-02"},
					{"id":"a","vendor":"Cafe","amount":12.5,"tax":1,"currency":"USD","category":"Dining","date":"2024-01-01","imageUrl":"/api/images/a.jpg"}
				]`)
			})

			It("should restore them in order", func() {
				Expect(err).NotTo(HaveOccurred())
				list := store.List()
				Expect(list).To(HaveLen(2))
				Expect(list[0].ID).To(Equal("b"))
				Expect(list[1].ImageURL).To(Equal("/api/images/a.jpg"))
			})
		})

		When("saved receipts repeat an id", func() {
			BeforeEach(func() {
				medium.data = []byte(`[
					{"id":"a","vendor":"one","amount":1,"currency":"USD","category":"Other","date":"2024-01-01"},
					{"id":"a","vendor":"two","amount":2,"currency":"USD","category":"Other","date":"2024-01-01"},
					{"id":"","vendor":"three","amount":3,"currency":"USD","category":"Other","date":"2024-01-01"}
				]`)
			})

			It("should keep the first occurrence only", func() {
				Expect(err).NotTo(HaveOccurred())
				list := store.List()
				Expect(list).To(HaveLen(1))
				Expect(list[0].Vendor).To(Equal("one"))
			})
		})

		When("the saved bytes are corrupt", func() {
			BeforeEach(func() {
				medium.data = []byte(`{not json`)
			})

			It("reports the problem", func() {
				Expect(err).To(MatchError(ErrPersistenceUnavailable))
			})

			It("should start empty and stay usable", func() {
				Expect(store.List()).To(BeEmpty())
				Expect(store.Insert(Receipt{ID: "a"})).To(Succeed())
			})

			It("should keep the unreadable bytes when writing", func() {
				Expect(store.Insert(Receipt{ID: "a"})).To(Succeed())
				Expect(medium.aside).To(HaveLen(1))
				Expect(string(medium.aside[0])).To(Equal(`{not json`))
			})
		})

		When("the unreadable bytes cannot be set aside", func() {
			BeforeEach(func() {
				medium.data = []byte(`{not json`)
				medium.setAsideErr = errors.New("read-only database")
			})

			It("should keep working in memory without writing", func() {
				Expect(store.Insert(Receipt{ID: "a"})).To(MatchError(ErrPersistenceUnavailable))
				Expect(store.List()).To(HaveLen(1))
				Expect(medium.writes).To(BeZero())
				Expect(string(medium.data)).To(Equal(`{not json`))
			})
		})

		When("saved receipts violate the record invariants", func() {
			BeforeEach(func() {
				medium.data = []byte(`[
					{"id":"ok","vendor":"Cafe","amount":12.5,"tax":1,"currency":"USD","category":"Dining","date":"2024-01-01"},
					{"id":"a","vendor":"","amount":-5,"tax":-1,"currency":"USD","category":"Dining","date":"2024-01-01"},
					{"id":"b","vendor":"Shell","amount":-5,"currency":"USD","category":"Travel","date":"2024-01-01"},
					{"id":"c","vendor":"Shell","amount":5,"tax":-1,"currency":"USD","category":"Travel","date":"2024-01-01"},
					{"id":"d","vendor":"Shell","amount":5,"currency":" ","category":"Travel","date":"2024-01-01"},
					{"id":"e","vendor":"Shell","amount":5,"currency":"USD","category":"","date":"2024-01-01"},
					{"id":"f","vendor":"Shell","amount":5,"currency":"USD","category":"Travel"}
				]`)
			})

			It("should skip them", func() {
				Expect(err).NotTo(HaveOccurred())
				list := store.List()
				Expect(list).To(HaveLen(1))
				Expect(list[0].ID).To(Equal("ok"))
			})

			It("should keep the aggregates non-negative", func() {
				Expect(TotalSpending(store.List()).StringFixed(2)).To(Equal("12.50"))
			})
		})

		When("the medium cannot be read", func() {
			BeforeEach(func() {
				medium.readErr = errors.New("permission denied")
			})

			It("should start empty", func() {
				Expect(err).To(MatchError(ErrPersistenceUnavailable))
				Expect(store.List()).To(BeEmpty())
			})
		})
	})

	Describe("with BoltDB", func() {
		It("should survive a restart", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "receipts.db")
			db, err := NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())

			first := NewStore(db)
			Expect(first.Load()).To(Succeed())
			Expect(first.Insert(valid("a", "Cafe", 12.5))).To(Succeed())
			Expect(first.Insert(valid("b", "Shell", 40))).To(Succeed())
			Expect(first.Delete("a")).To(Succeed())
			Expect(db.Close()).To(Succeed())

			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer db.Close()

			second := NewStore(db)
			Expect(second.Load()).To(Succeed())
			Expect(second.List()).To(Equal(first.List()))
		})

		It("should not overwrite state written by a newer schema", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "receipts.db")
			db, err := NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer db.Close()

			future := []byte(`[{"id":"future","vendor":"Cafe","amount":1,"currency":"USD","category":"Dining","date":"2030-01-01"}]`)
			err = db.db.Update(func(tx *bbolt.Tx) error {
				bucket := tx.Bucket([]byte(stateBucketName))
				if err := bucket.Put([]byte(schemaVersionKey), []byte("2")); err != nil {
					return err
				}
				return bucket.Put([]byte(receiptsKey), future)
			})
			Expect(err).NotTo(HaveOccurred())

			store := NewStore(db)
			Expect(store.Load()).To(MatchError(ErrUnsupportedSchema))
			Expect(store.Insert(valid("new", "Shell", 40))).To(Succeed())

			var backups []string
			err = db.db.View(func(tx *bbolt.Tx) error {
				return tx.Bucket([]byte(stateBucketName)).ForEach(func(k, v []byte) error {
					if strings.HasPrefix(string(k), unreadablePrefix) && !strings.HasSuffix(string(k), schemaVersionKey) {
						backups = append(backups, string(v))
					}
					return nil
				})
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(backups).To(ConsistOf(string(future)))

			data, err := db.ReadState()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"id":"new"`))
			Expect(string(data)).NotTo(ContainSubstring("future"))
		})
	})
})
