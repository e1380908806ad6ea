package pipeline

// SelectBundleVersion exposes selectBundleVersion for testing.
var SelectBundleVersion = selectBundleVersion
