package model

// Document is the single aggregate holding all mutable application state.
// It round-trips through one JSON file; entities reference each other by
// plain integer ids, never by pointer.
//
// Version is a monotonic counter bumped on every successful save. A save
// whose Version no longer matches the persisted document is rejected, so
// concurrent writers fail loudly instead of silently overwriting each
// other.
type Document struct {
	Version    int64       `json:"version"`
	Profiles   []Profile   `json:"profiles"`
	Chats      []Chat      `json:"chats"`
	Messages   []Message   `json:"messages"`
	Orders     []Order     `json:"orders"`
	Comments   []Comment   `json:"comments"`
	Promocodes []Promocode `json:"promocodes"`
	Settings   Settings    `json:"settings"`
}

func DefaultDocument() *Document {
	doc := &Document{}
	doc.Normalize()
	return doc
}

// Normalize back-fills sections that older documents may lack. Absent
// top-level keys are treated as empty, not as an error.
func (d *Document) Normalize() {
	if d.Profiles == nil {
		d.Profiles = []Profile{}
	}
	if d.Chats == nil {
		d.Chats = []Chat{}
	}
	if d.Messages == nil {
		d.Messages = []Message{}
	}
	if d.Orders == nil {
		d.Orders = []Order{}
	}
	if d.Comments == nil {
		d.Comments = []Comment{}
	}
	if d.Promocodes == nil {
		d.Promocodes = []Promocode{}
	}
	if d.Settings.CryptoWallets == nil {
		d.Settings.CryptoWallets = defaultSettings().CryptoWallets
	}
	if d.Settings.BonusPercentage <= 0 {
		d.Settings.BonusPercentage = DefaultBonusPercentage
	}
	if d.Settings.App.Name == "" {
		d.Settings.App = defaultSettings().App
	}
}

// Clone returns a deep copy safe for the caller to mutate.
func (d *Document) Clone() *Document {
	if d == nil {
		return DefaultDocument()
	}

	out := &Document{
		Version:    d.Version,
		Profiles:   make([]Profile, len(d.Profiles)),
		Chats:      append([]Chat(nil), d.Chats...),
		Messages:   append([]Message(nil), d.Messages...),
		Orders:     make([]Order, len(d.Orders)),
		Comments:   append([]Comment(nil), d.Comments...),
		Promocodes: append([]Promocode(nil), d.Promocodes...),
		Settings:   d.Settings,
	}
	for i, p := range d.Profiles {
		p.Photos = append([]string(nil), p.Photos...)
		out.Profiles[i] = p
	}
	for i, o := range d.Orders {
		if o.BookedAt != nil {
			bookedAt := *o.BookedAt
			o.BookedAt = &bookedAt
		}
		out.Orders[i] = o
	}
	out.Settings.CryptoWallets = make(map[string]string, len(d.Settings.CryptoWallets))
	for k, v := range d.Settings.CryptoWallets {
		out.Settings.CryptoWallets[k] = v
	}
	out.Normalize()
	return out
}

func (d *Document) NextProfileID() int64 {
	var max int64
	for _, p := range d.Profiles {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

func (d *Document) NextChatID() int64 {
	var max int64
	for _, c := range d.Chats {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

func (d *Document) NextMessageID() int64 {
	var max int64
	for _, m := range d.Messages {
		if m.ID > max {
			max = m.ID
		}
	}
	return max + 1
}

func (d *Document) NextOrderID() int64 {
	var max int64
	for _, o := range d.Orders {
		if o.ID > max {
			max = o.ID
		}
	}
	return max + 1
}

func (d *Document) NextCommentID() int64 {
	var max int64
	for _, c := range d.Comments {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

func (d *Document) ProfileByID(id int64) *Profile {
	for i := range d.Profiles {
		if d.Profiles[i].ID == id {
			return &d.Profiles[i]
		}
	}
	return nil
}

func (d *Document) ChatByID(id int64) *Chat {
	for i := range d.Chats {
		if d.Chats[i].ID == id {
			return &d.Chats[i]
		}
	}
	return nil
}
