package offline

import (
	"encoding/json"
	"fmt"
)

// Reconcile 只保留同时在文档与 local 中出现的版本，并按剩余版本重算 dist-tags.latest。
// 没有剩余版本时移除 latest；其它字段与其它 dist-tag 原样保留。输入文档不会被修改。
func Reconcile(doc *Document, local VersionSet) (*Document, error) {
	if doc == nil {
		return nil, malformed("", "document is nil")
	}
	versions, err := doc.Versions()
	if err != nil {
		return nil, withPackage(err, doc.Name())
	}
	distTags, err := doc.DistTags()
	if err != nil {
		return nil, withPackage(err, doc.Name())
	}

	kept := make(map[string]json.RawMessage, len(versions))
	remaining := make([]string, 0, len(versions))
	for version, manifest := range versions {
		if !local.Has(version) {
			continue
		}
		kept[version] = manifest
		remaining = append(remaining, version)
	}

	if latest, ok := LatestVersion(remaining); ok {
		encoded, err := json.Marshal(latest)
		if err != nil {
			return nil, fmt.Errorf("encode latest tag: %w", err)
		}
		distTags[LatestTag] = encoded
	} else {
		delete(distTags, LatestTag)
	}

	out := doc.derive()
	if out.fields[fieldVersions], err = json.Marshal(kept); err != nil {
		return nil, fmt.Errorf("encode versions: %w", err)
	}
	if out.fields[fieldDistTags], err = json.Marshal(distTags); err != nil {
		return nil, fmt.Errorf("encode dist-tags: %w", err)
	}
	return out, nil
}
