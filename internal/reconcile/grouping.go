package reconcile

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

type openGroup struct {
	group    ItemGroup
	nameKey  string
	itemType string
	sizes    map[string]struct{}
	ids      map[string]struct{}
}

// GroupItems partitions items into product groups with size variations.
// An item joins an earlier group only when name and type match and the group
// holds neither its size nor its id; otherwise it starts its own group, so
// rows sharing name and size are never merged.
func GroupItems(items []ItemRecord) []ItemGroup {
	open := make([]*openGroup, 0, len(items))
	keys := make(map[string]struct{})
	for _, item := range items {
		name := orDefault(item.Name, DefaultItemName)
		itemType := orDefault(item.ItemType, DefaultItemType)
		size := orDefault(item.Size, DefaultSize)
		nameKey := NormalizeName(name)
		sizeKey := NormalizeSize(size)

		if target := findGroup(open, nameKey, itemType, sizeKey, item.ID); target != nil {
			target.add(item, sizeKey)
			continue
		}

		g := &openGroup{
			group: ItemGroup{
				GroupKey:       uniqueKey(keys, groupKey(name, itemType, size, item.ID)),
				Name:           name,
				ItemType:       itemType,
				EducationLevel: strings.TrimSpace(item.EducationLevel),
				Category:       orDefault(item.Category, DefaultCategory),
			},
			nameKey:  nameKey,
			itemType: itemType,
			sizes:    make(map[string]struct{}),
			ids:      make(map[string]struct{}),
		}
		g.add(item, sizeKey)
		open = append(open, g)
	}

	groups := make([]ItemGroup, 0, len(open))
	for _, g := range open {
		sortVariations(g.group.Variations)
		groups = append(groups, g.group)
	}
	return groups
}

func findGroup(open []*openGroup, nameKey, itemType, sizeKey, id string) *openGroup {
	for _, g := range open {
		if g.nameKey != nameKey || g.itemType != itemType {
			continue
		}
		if _, taken := g.sizes[sizeKey]; taken {
			continue
		}
		if _, taken := g.ids[id]; taken {
			continue
		}
		return g
	}
	return nil
}

func (g *openGroup) add(item ItemRecord, sizeKey string) {
	g.group.Variations = append(g.group.Variations, item)
	g.group.TotalStock += item.Stock
	g.sizes[sizeKey] = struct{}{}
	g.ids[item.ID] = struct{}{}
	if g.group.Image == "" && strings.TrimSpace(item.Image) != "" {
		g.group.Image = item.Image
	}
	if g.group.EducationLevel == "" {
		g.group.EducationLevel = strings.TrimSpace(item.EducationLevel)
	}
}

// groupKey is stable for a product's first variation; size and id keep
// otherwise identical singleton groups apart.
func groupKey(name, itemType, size, id string) string {
	return slug.Make(strings.Join([]string{name, itemType, size, id}, " "))
}

func uniqueKey(used map[string]struct{}, key string) string {
	candidate := key
	for n := 2; ; n++ {
		if _, taken := used[candidate]; !taken {
			break
		}
		candidate = key + "-" + strconv.Itoa(n)
	}
	used[candidate] = struct{}{}
	return candidate
}

func sortVariations(vs []ItemRecord) {
	sort.SliceStable(vs, func(i, j int) bool {
		si := orDefault(vs[i].Size, DefaultSize)
		sj := orDefault(vs[j].Size, DefaultSize)
		if si != sj {
			return si < sj
		}
		return vs[i].ID < vs[j].ID
	})
}

func orDefault(v, fallback string) string {
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		return trimmed
	}
	return fallback
}
