package audio

// Observer receives engine cycle callbacks. Nil funcs are skipped.
// Callbacks run on the IO path and must not block.
type Observer struct {
	OnRead    func(frames int)
	OnWrite   func(frames int)
	OnSilence func(frames int)
	OnScrub   func()
}
