package engine

// ============================================================================
// CLASSIFIER — keeps the twelve recognised series and merges the sources
// ============================================================================

// classificationMask lists, per source category, the descriptions kept.
var classificationMask = func() [seriesCount]Filters {
	var mask [seriesCount]Filters
	for s := Series(0); s < seriesCount; s++ {
		allowed := make([]string, 0, resourceCount)
		for _, r := range Resources {
			allowed = append(allowed, Description(r, s))
		}
		mask[s] = Filters{Dimensions: map[string][]string{KeyDescription: allowed}}
	}
	return mask
}()

// Classify filters each source down to its four recognised descriptions and
// concatenates them: production rows, then import rows, then export rows,
// each in source order. A source with no matching rows contributes nothing.
func Classify(production, imports, exports RecordView) RecordView {
	return classify(production, imports, exports, nopObserver{})
}

func classify(production, imports, exports RecordView, obs Observer) RecordView {
	sources := [seriesCount]RecordView{
		SeriesProduction: production,
		SeriesImports:    imports,
		SeriesExports:    exports,
	}

	var kept [seriesCount]RecordView
	for s, view := range sources {
		if view == nil {
			view = NewRecordView(nil)
		}
		kept[s] = ApplyFilters(view, classificationMask[s])
		obs.ObserveClassified(Series(s), kept[s].Len(), view.Len())
	}

	return newConcatView(newConcatView(kept[SeriesProduction], kept[SeriesImports]), kept[SeriesExports])
}
