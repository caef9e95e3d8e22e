package tools

// Category of a catalog part.
type Category string

const (
	CategoryCPU         Category = "cpu"
	CategoryGPU         Category = "gpu"
	CategoryMemory      Category = "memory"
	CategoryMotherboard Category = "motherboard"
	CategoryPSU         Category = "psu"
	CategoryCase        Category = "case"
	CategoryStorage     Category = "storage"
)

// Part is one catalog entry. Score is a relative performance index on a
// 0-100 scale, comparable within a category only. Watts is the draw for
// CPUs and GPUs and the capacity for power supplies.
type Part struct {
	Category Category `json:"category"`
	Name     string   `json:"name"`
	Brand    string   `json:"brand"`
	Price    float64  `json:"price"`
	Socket   string   `json:"socket,omitempty"`
	Memory   string   `json:"memory,omitempty"`
	Watts    int      `json:"watts,omitempty"`
	Score    int      `json:"score,omitempty"`
}

// Catalog is the in-memory component database the tools query.
type Catalog struct {
	parts []Part
}

// NewCatalog returns a catalog seeded with the default part list.
func NewCatalog() *Catalog {
	return &Catalog{parts: defaultParts()}
}

// Parts returns all entries of a category, or every part when category is
// empty.
func (c *Catalog) Parts(category Category) []Part {
	if category == "" {
		return append([]Part(nil), c.parts...)
	}
	var out []Part
	for _, p := range c.parts {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// BestMatch fuzzily resolves a free-form query to a part. An empty
// category searches the whole catalog.
func (c *Catalog) BestMatch(category Category, query string) (Part, bool) {
	var best Part
	bestScore := 0
	for _, p := range c.parts {
		if category != "" && p.Category != category {
			continue
		}
		if s := matchScore(query, p.Name); s > bestScore {
			best, bestScore = p, s
		}
	}
	return best, bestScore > 0
}

func defaultParts() []Part {
	return []Part{
		{Category: CategoryCPU, Name: "AMD Ryzen 5 5600", Brand: "AMD", Price: 129, Socket: "AM4", Watts: 65, Score: 58},
		{Category: CategoryCPU, Name: "AMD Ryzen 5 7600", Brand: "AMD", Price: 229, Socket: "AM5", Watts: 65, Score: 72},
		{Category: CategoryCPU, Name: "AMD Ryzen 7 7800X3D", Brand: "AMD", Price: 399, Socket: "AM5", Watts: 120, Score: 88},
		{Category: CategoryCPU, Name: "AMD Ryzen 9 7950X", Brand: "AMD", Price: 549, Socket: "AM5", Watts: 170, Score: 95},
		{Category: CategoryCPU, Name: "Intel Core i5-13400F", Brand: "Intel", Price: 209, Socket: "LGA1700", Watts: 65, Score: 70},
		{Category: CategoryCPU, Name: "Intel Core i5-14600K", Brand: "Intel", Price: 299, Socket: "LGA1700", Watts: 125, Score: 80},
		{Category: CategoryCPU, Name: "Intel Core i7-14700K", Brand: "Intel", Price: 399, Socket: "LGA1700", Watts: 125, Score: 90},
		{Category: CategoryCPU, Name: "Intel Core i9-14900K", Brand: "Intel", Price: 549, Socket: "LGA1700", Watts: 125, Score: 97},

		{Category: CategoryGPU, Name: "GeForce RTX 4060", Brand: "NVIDIA", Price: 299, Watts: 115, Score: 60},
		{Category: CategoryGPU, Name: "GeForce RTX 4060 Ti", Brand: "NVIDIA", Price: 389, Watts: 160, Score: 68},
		{Category: CategoryGPU, Name: "GeForce RTX 4070", Brand: "NVIDIA", Price: 549, Watts: 200, Score: 78},
		{Category: CategoryGPU, Name: "GeForce RTX 4070 Super", Brand: "NVIDIA", Price: 599, Watts: 220, Score: 83},
		{Category: CategoryGPU, Name: "GeForce RTX 4080 Super", Brand: "NVIDIA", Price: 999, Watts: 320, Score: 92},
		{Category: CategoryGPU, Name: "GeForce RTX 4090", Brand: "NVIDIA", Price: 1599, Watts: 450, Score: 100},
		{Category: CategoryGPU, Name: "Radeon RX 7600", Brand: "AMD", Price: 269, Watts: 165, Score: 58},
		{Category: CategoryGPU, Name: "Radeon RX 7800 XT", Brand: "AMD", Price: 499, Watts: 263, Score: 76},
		{Category: CategoryGPU, Name: "Radeon RX 7900 XTX", Brand: "AMD", Price: 949, Watts: 355, Score: 91},

		{Category: CategoryMemory, Name: "Kingston Fury Beast 16 GB DDR4-3200", Brand: "Kingston", Price: 42, Memory: "DDR4"},
		{Category: CategoryMemory, Name: "Corsair Vengeance LPX 16 GB DDR4-3600", Brand: "Corsair", Price: 54, Memory: "DDR4"},
		{Category: CategoryMemory, Name: "Corsair Vengeance 32 GB DDR5-6000", Brand: "Corsair", Price: 104, Memory: "DDR5"},
		{Category: CategoryMemory, Name: "G.Skill Trident Z5 32 GB DDR5-6400", Brand: "G.Skill", Price: 129, Memory: "DDR5"},

		{Category: CategoryMotherboard, Name: "Gigabyte B550 AORUS Elite V2", Brand: "Gigabyte", Price: 129, Socket: "AM4", Memory: "DDR4"},
		{Category: CategoryMotherboard, Name: "ASUS TUF Gaming B650-Plus WiFi", Brand: "ASUS", Price: 169, Socket: "AM5", Memory: "DDR5"},
		{Category: CategoryMotherboard, Name: "MSI MAG B650 Tomahawk WiFi", Brand: "MSI", Price: 199, Socket: "AM5", Memory: "DDR5"},
		{Category: CategoryMotherboard, Name: "ASUS Prime B760M-A", Brand: "ASUS", Price: 129, Socket: "LGA1700", Memory: "DDR5"},
		{Category: CategoryMotherboard, Name: "MSI PRO Z790-A WiFi", Brand: "MSI", Price: 219, Socket: "LGA1700", Memory: "DDR5"},

		{Category: CategoryPSU, Name: "EVGA 600 BR 600W", Brand: "EVGA", Price: 54, Watts: 600},
		{Category: CategoryPSU, Name: "Corsair RM750e 750W", Brand: "Corsair", Price: 99, Watts: 750},
		{Category: CategoryPSU, Name: "be quiet! Pure Power 12 M 850W", Brand: "be quiet!", Price: 129, Watts: 850},
		{Category: CategoryPSU, Name: "Seasonic Focus GX-1000 1000W", Brand: "Seasonic", Price: 179, Watts: 1000},

		{Category: CategoryCase, Name: "NZXT H5 Flow", Brand: "NZXT", Price: 94},
		{Category: CategoryCase, Name: "Lian Li Lancool 216", Brand: "Lian Li", Price: 99},
		{Category: CategoryCase, Name: "Fractal Design North", Brand: "Fractal Design", Price: 139},

		{Category: CategoryStorage, Name: "Crucial P3 Plus 1TB NVMe", Brand: "Crucial", Price: 69},
		{Category: CategoryStorage, Name: "Samsung 990 Pro 1TB NVMe", Brand: "Samsung", Price: 119, Score: 90},
		{Category: CategoryStorage, Name: "WD Black SN850X 2TB NVMe", Brand: "Western Digital", Price: 179, Score: 88},
	}
}
