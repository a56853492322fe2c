package store

import bolt "go.etcd.io/bbolt"

func init() {
	initDB["initialize word table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketWords))
		return err
	}
}

// Word is a persisted user definition; Source is the body of its quotation.
type Word struct {
	Name   string
	Source string
}

// PutWords stores several words in one transaction, replacing any prior
// definitions of the same names.
func (s *Store) PutWords(words ...Word) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketWords))
		for _, w := range words {
			if err := b.Put([]byte(w.Name), []byte(w.Source)); err != nil {
				return err
			}
		}
		return nil
	})
}

// DelWord deletes a stored word; deleting an absent word is not an error.
func (s *Store) DelWord(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketWords)).Delete([]byte(name))
	})
}

// Words returns every stored word, ordered by name.
func (s *Store) Words() ([]Word, error) {
	var words []Word
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketWords)).ForEach(func(k, v []byte) error {
			words = append(words, Word{Name: string(k), Source: string(v)})
			return nil
		})
	})
	return words, err
}
